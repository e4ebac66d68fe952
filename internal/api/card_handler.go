package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/service"
)

// CardHandler handles card management requests.
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService service.CardService, logger *slog.Logger) *CardHandler {
	if cardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardService cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	return &CardHandler{
		cardService: cardService,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /cards. Audio is generated before the response is
// written; a card whose audio failed is still created, with no sound URLs.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), ownerID, req.DeckID, req.toCardText())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	log.Debug("card created",
		slog.String("owner_id", ownerID.String()),
		slog.String("card_id", card.ID.String()),
		slog.Int("sound_urls", len(card.SoundURLs)))
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// GetCard handles GET /cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(r.Context(), ownerID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// UpdateCard handles PUT /cards/{id}. Progress is kept; audio is regenerated
// only when the learning-language text changes.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardTextRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.cardService.UpdateCard(r.Context(), ownerID, cardID, req.toCardText())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), ownerID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	log.Debug("card deleted",
		slog.String("owner_id", ownerID.String()),
		slog.String("card_id", cardID.String()))
	w.WriteHeader(http.StatusNoContent)
}
