package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/service/session"
)

// SessionHandler handles learning and review session requests.
type SessionHandler struct {
	scheduler session.Scheduler
	logger    *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(scheduler session.Scheduler, logger *slog.Logger) *SessionHandler {
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "session_handler")),
	}
}

// StartLearningSession handles GET /decks/{id}/learning-session?count=N.
// A missing or zero count uses the configured default.
func (h *SessionHandler) StartLearningSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	count, err := getQueryInt(r, "count", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.scheduler.StartLearningSession(r.Context(), ownerID, deckID, count)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start learning session")
		return
	}

	log.Debug("learning session started",
		slog.String("deck_id", deckID.String()),
		slog.Int("cards", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{Cards: cards})
}

// FinishLearningSession handles POST /learning-session/finish.
func (h *SessionHandler) FinishLearningSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req FinishLearningSessionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	learned, err := h.scheduler.FinishLearningSession(r.Context(), ownerID, req.CardIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to finish learning session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, FinishLearningSessionResponse{Learned: learned})
}

// StartReviewSession handles GET /decks/{id}/review-session.
func (h *SessionHandler) StartReviewSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cards, err := h.scheduler.StartReviewSession(r.Context(), ownerID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{Cards: cards})
}

// StartReviewAllCardsSession handles GET /decks/{id}/review-session/all.
func (h *SessionHandler) StartReviewAllCardsSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, deckID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cards, err := h.scheduler.StartReviewAllCardsSession(r.Context(), ownerID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{Cards: cards})
}

// FinishReviewCard handles POST /cards/{id}/review and returns the card with
// its new mastery score.
func (h *SessionHandler) FinishReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewAnswerRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.scheduler.FinishReviewCard(r.Context(), ownerID, cardID, session.Answer{
		IsCorrect: *req.IsCorrect,
		Strategy:  domain.StrategyType(req.Strategy),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("strategy", req.Strategy),
		slog.Bool("correct", *req.IsCorrect),
		slog.Float64("mastery_score", card.MasteryScore))
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}
