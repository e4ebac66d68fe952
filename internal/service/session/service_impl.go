package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// Config bounds the size of learning sessions.
type Config struct {
	DefaultLearningSessionSize int
	MaxLearningSessionSize     int
}

// Verify interface compliance at compile time
var _ Scheduler = (*schedulerImpl)(nil)

// schedulerImpl implements the Scheduler interface.
type schedulerImpl struct {
	tx         store.Transactor
	strategies *domain.StrategyRegistry
	engine     mastery.Engine
	cfg        Config
	now        func() time.Time
	logger     *slog.Logger
}

// NewScheduler creates a new Scheduler implementation.
func NewScheduler(
	tx store.Transactor,
	strategies *domain.StrategyRegistry,
	engine mastery.Engine,
	cfg Config,
	logger *slog.Logger,
) Scheduler {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if strategies == nil {
		panic("strategies cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if cfg.DefaultLearningSessionSize <= 0 {
		cfg.DefaultLearningSessionSize = 5
	}
	if cfg.MaxLearningSessionSize < cfg.DefaultLearningSessionSize {
		cfg.MaxLearningSessionSize = cfg.DefaultLearningSessionSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &schedulerImpl{
		tx:         tx,
		strategies: strategies,
		engine:     engine,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "session_scheduler")),
	}
}

// StartLearningSession implements Scheduler.StartLearningSession.
func (s *schedulerImpl) StartLearningSession(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	stores := s.tx.Stores()

	if limit <= 0 {
		limit = s.cfg.DefaultLearningSessionSize
	}
	if limit > s.cfg.MaxLearningSessionSize {
		limit = s.cfg.MaxLearningSessionSize
	}

	if _, err := stores.Decks.GetByID(ctx, ownerID, deckID); err != nil {
		return nil, err
	}

	cards, err := stores.Cards.FindNew(ctx, ownerID, deckID, limit)
	if err != nil {
		return nil, newServiceError("start_learning_session", "failed to find new cards", err)
	}
	if len(cards) == 0 {
		log.Debug("no cards to learn", slog.String("deck_id", deckID.String()))
		return nil, ErrNoCardsToLearn
	}

	log.Debug("learning session started",
		slog.String("deck_id", deckID.String()),
		slog.Int("cards", len(cards)))
	return cards, nil
}

// FinishLearningSession implements Scheduler.FinishLearningSession.
func (s *schedulerImpl) FinishLearningSession(
	ctx context.Context,
	ownerID uuid.UUID,
	cardIDs []uuid.UUID,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return 0, nil
	}

	var changed int
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		changed, err = st.Cards.MarkLearned(ctx, ownerID, cardIDs)
		return err
	})
	if err != nil {
		return 0, newServiceError("finish_learning_session", "failed to mark cards as learned", err)
	}

	log.Info("learning session finished",
		slog.String("owner_id", ownerID.String()),
		slog.Int("requested", len(cardIDs)),
		slog.Int("changed", changed))
	return changed, nil
}

// StartReviewSession implements Scheduler.StartReviewSession.
func (s *schedulerImpl) StartReviewSession(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
) ([]*domain.Card, error) {
	stores := s.tx.Stores()

	if _, err := stores.Decks.GetByID(ctx, ownerID, deckID); err != nil {
		return nil, err
	}

	cards, err := stores.Cards.FindDueForReview(ctx, ownerID, deckID, s.engine.DueCutoff(s.now()))
	if err != nil {
		return nil, newServiceError("start_review_session", "failed to find due cards", err)
	}
	if len(cards) == 0 {
		return nil, ErrNoCardsToReview
	}
	return cards, nil
}

// StartReviewAllCardsSession implements Scheduler.StartReviewAllCardsSession.
func (s *schedulerImpl) StartReviewAllCardsSession(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
) ([]*domain.Card, error) {
	stores := s.tx.Stores()

	if _, err := stores.Decks.GetByID(ctx, ownerID, deckID); err != nil {
		return nil, err
	}

	cards, err := stores.Cards.FindReviewed(ctx, ownerID, deckID)
	if err != nil {
		return nil, newServiceError("start_review_all_cards_session", "failed to find learned cards", err)
	}
	if len(cards) == 0 {
		return nil, ErrNoCardsToReview
	}
	return cards, nil
}

// FinishReviewCard implements Scheduler.FinishReviewCard.
func (s *schedulerImpl) FinishReviewCard(
	ctx context.Context,
	ownerID, cardID uuid.UUID,
	answer Answer,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	strategy, err := s.strategies.Get(answer.Strategy)
	if err != nil {
		log.Warn("unknown strategy in review answer",
			slog.String("card_id", cardID.String()),
			slog.String("strategy", string(answer.Strategy)))
		return nil, err
	}

	var updated *domain.Card
	err = s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		card, err := st.Cards.GetForUpdate(ctx, ownerID, cardID)
		if err != nil {
			return err
		}

		next, err := s.engine.ApplyAnswer(card, strategy, answer.IsCorrect, s.now().UTC())
		if err != nil {
			return err
		}

		if err := st.Cards.UpdateMastery(ctx, ownerID, cardID, next.MasteryScore, next.LastReviewedAt); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) || errors.Is(err, mastery.ErrCardNotLearned) {
			return nil, err
		}
		log.Error("failed to record review answer",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, newServiceError("finish_review_card", "failed to update mastery", err)
	}

	log.Debug("review answer recorded",
		slog.String("card_id", cardID.String()),
		slog.String("strategy", string(strategy.Type)),
		slog.Bool("correct", answer.IsCorrect),
		slog.Float64("mastery_score", updated.MasteryScore))
	return updated, nil
}
