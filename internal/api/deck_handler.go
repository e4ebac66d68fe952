package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/service"
)

// DeckHandler handles deck requests.
type DeckHandler struct {
	deckService service.DeckService
	logger      *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckService service.DeckService, logger *slog.Logger) *DeckHandler {
	if deckService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deckService cannot be nil for DeckHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		deckService: deckService,
		logger:      logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	deck, err := h.deckService.CreateDeck(r.Context(), ownerID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}

	log.Debug("deck created",
		slog.String("owner_id", ownerID.String()),
		slog.String("deck_id", deck.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// GetDeck handles GET /decks/{id}: the deck with its counters and cards.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.deckService.GetDeck(r.Context(), ownerID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// RenameDeck handles PATCH /decks/{id}.
func (h *DeckHandler) RenameDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RenameRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	deck, err := h.deckService.RenameDeck(r.Context(), ownerID, deckID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// MoveDeck handles POST /decks/{id}/move.
func (h *DeckHandler) MoveDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req MoveDeckRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	deck, err := h.deckService.MoveDeck(r.Context(), ownerID, deckID, req.FolderID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /decks/{id}.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.deckService.DeleteDeck(r.Context(), ownerID, deckID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
