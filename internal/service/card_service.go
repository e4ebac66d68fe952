package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// CardService manages cards and the audio generated for them.
type CardService interface {
	// CreateCard creates a card in deckID and generates audio for its
	// learning-language text. Audio that cannot be generated is left out;
	// the card is still created.
	CreateCard(ctx context.Context, ownerID, deckID uuid.UUID, text domain.CardText) (*domain.Card, error)

	// GetCard retrieves a card. Returns store.ErrCardNotFound if it does not exist for the owner.
	GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Card, error)

	// UpdateCard replaces the text of a card. Audio is regenerated only when
	// the learning-language text changes.
	UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, text domain.CardText) (*domain.Card, error)

	// DeleteCard removes a card and releases the audio it held.
	DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	tx     store.Transactor
	assets AssetManager
	limits domain.Limits
	now    func() time.Time
	logger *slog.Logger
}

// Ensure cardServiceImpl implements CardService
var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	tx store.Transactor,
	assets AssetManager,
	limits domain.Limits,
	logger *slog.Logger,
) (CardService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if assets == nil {
		return nil, domain.NewValidationError("assets", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		tx:     tx,
		assets: assets,
		limits: limits,
		now:    time.Now,
		logger: logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateCard implements CardService.CreateCard.
//
// The card row is committed first with an empty sound list. Synthesis runs
// outside any transaction and the references are written back in a second,
// short transaction while the asset hashes are still locked.
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
	text domain.CardText,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(ownerID, deckID, text, s.limits)
	if err != nil {
		return nil, err
	}

	var lang *domain.Language
	err = s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		deck, err := st.Decks.GetByID(ctx, ownerID, deckID)
		if err != nil {
			return err
		}
		lang, err = st.Languages.GetByCode(ctx, deck.LearningLanguageCode)
		if err != nil {
			return err
		}
		return st.Cards.Create(ctx, card)
	})
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) || errors.Is(err, store.ErrLanguageNotFound) {
			return nil, err
		}
		return nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	log.Info("card created",
		slog.String("owner_id", ownerID.String()),
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))

	refs, err := s.bindAudio(ctx, card, lang)
	if err != nil {
		log.Warn("card saved without audio",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return card, nil
	}
	card.SoundURLs = refs
	return card, nil
}

// bindAudio generates the audio of card and stores the references on it.
func (s *cardServiceImpl) bindAudio(ctx context.Context, card *domain.Card, lang *domain.Language) ([]string, error) {
	reqs := asset.RequestsForCard(card.TextInLearningLanguage, lang)
	return s.assets.Bind(ctx, reqs, func(ctx context.Context, refs []string) error {
		return s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
			return st.Cards.UpdateSoundURLs(ctx, card.OwnerID, card.ID, refs)
		})
	})
}

// GetCard implements CardService.GetCard.
func (s *cardServiceImpl) GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Card, error) {
	return s.tx.Stores().Cards.GetByID(ctx, ownerID, cardID)
}

// UpdateCard implements CardService.UpdateCard.
//
// The old references are snapshotted before the new audio is bound and are
// released only after the card points at its new references.
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	ownerID, cardID uuid.UUID,
	text domain.CardText,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		card        *domain.Card
		lang        *domain.Language
		oldRefs     []string
		textChanged bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		c, err := st.Cards.GetByID(ctx, ownerID, cardID)
		if err != nil {
			return err
		}

		previous := c.TextInLearningLanguage
		if err := c.ApplyText(text, s.limits); err != nil {
			return err
		}
		textChanged = c.TextInLearningLanguage != previous
		c.UpdatedAt = s.now().UTC()

		if textChanged {
			deck, err := st.Decks.GetByID(ctx, ownerID, c.DeckID)
			if err != nil {
				return err
			}
			if lang, err = st.Languages.GetByCode(ctx, deck.LearningLanguageCode); err != nil {
				return err
			}
			oldRefs = append([]string(nil), c.SoundURLs...)
		}

		if err := st.Cards.UpdateText(ctx, c); err != nil {
			return err
		}
		card = c
		return nil
	})
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) || errors.Is(err, store.ErrCardNotFound) {
			return nil, err
		}
		return nil, NewCardServiceError("update_card", "failed to save card", err)
	}

	if !textChanged {
		return card, nil
	}

	refs, err := s.bindAudio(ctx, card, lang)
	if err != nil {
		// The card keeps its previous references, so nothing is released.
		log.Warn("card text updated without new audio",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return card, nil
	}
	card.SoundURLs = refs

	if err := s.assets.Release(ctx, oldRefs); err != nil {
		log.Warn("failed to release replaced audio",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
	}

	log.Info("card audio regenerated",
		slog.String("card_id", card.ID.String()),
		slog.Int("refs", len(refs)))
	return card, nil
}

// DeleteCard implements CardService.DeleteCard.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var refs []string
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		refs, err = st.Cards.Delete(ctx, ownerID, cardID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return err
		}
		return NewCardServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted",
		slog.String("owner_id", ownerID.String()),
		slog.String("card_id", cardID.String()))

	if err := s.assets.Release(ctx, refs); err != nil {
		log.Warn("failed to release audio of deleted card",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}
