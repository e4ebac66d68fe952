package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// CreateDeckInput holds the fields of a new deck.
type CreateDeckInput struct {
	Name                 string
	FolderID             *uuid.UUID
	KnownLanguageCode    string
	LearningLanguageCode string
}

// DeckService manages decks.
type DeckService interface {
	// CreateDeck creates a deck in a folder, or at the root when FolderID is nil.
	// Returns store.ErrLanguageNotFound, store.ErrFolderNotFound or ErrNameConflict.
	CreateDeck(ctx context.Context, ownerID uuid.UUID, input CreateDeckInput) (*domain.Deck, error)

	// GetDeck returns a deck with its progress counters and cards.
	GetDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*DeckView, error)

	// RenameDeck renames a deck within its current folder.
	RenameDeck(ctx context.Context, ownerID, deckID uuid.UUID, name string) (*domain.Deck, error)

	// MoveDeck places a deck in targetFolderID, or at the root when it is nil.
	// Returns store.ErrFolderNotFound or ErrNameConflict.
	MoveDeck(ctx context.Context, ownerID, deckID uuid.UUID, targetFolderID *uuid.UUID) (*domain.Deck, error)

	// DeleteDeck removes a deck and its cards, then releases their audio.
	DeleteDeck(ctx context.Context, ownerID, deckID uuid.UUID) error
}

// deckServiceImpl implements the DeckService interface
type deckServiceImpl struct {
	tx     store.Transactor
	assets AssetManager
	engine mastery.Engine
	limits domain.Limits
	now    func() time.Time
	logger *slog.Logger
}

// Ensure deckServiceImpl implements DeckService
var _ DeckService = (*deckServiceImpl)(nil)

// NewDeckService creates a new DeckService.
// It returns an error if any of the required dependencies are nil.
func NewDeckService(
	tx store.Transactor,
	assets AssetManager,
	engine mastery.Engine,
	limits domain.Limits,
	logger *slog.Logger,
) (DeckService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if assets == nil {
		return nil, domain.NewValidationError("assets", "cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, domain.NewValidationError("engine", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		tx:     tx,
		assets: assets,
		engine: engine,
		limits: limits,
		now:    time.Now,
		logger: logger.With(slog.String("component", "deck_service")),
	}, nil
}

// CreateDeck implements DeckService.CreateDeck.
func (s *deckServiceImpl) CreateDeck(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateDeckInput,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := domain.NewDeck(
		ownerID,
		input.Name,
		input.FolderID,
		input.KnownLanguageCode,
		input.LearningLanguageCode,
		s.limits,
	)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		for _, code := range []string{deck.KnownLanguageCode, deck.LearningLanguageCode} {
			if _, err := st.Languages.GetByCode(ctx, code); err != nil {
				return err
			}
		}

		if deck.FolderID != nil {
			if _, err := st.Folders.GetByID(ctx, ownerID, *deck.FolderID); err != nil {
				return err
			}
		}

		taken, err := st.Decks.ExistsByName(ctx, ownerID, deck.FolderID, deck.Name, nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameConflict
		}

		return st.Decks.Create(ctx, deck)
	})
	if err != nil {
		return nil, mapDeckWriteError("create_deck", err)
	}

	log.Info("deck created",
		slog.String("owner_id", ownerID.String()),
		slog.String("deck_id", deck.ID.String()))
	return deck, nil
}

// GetDeck implements DeckService.GetDeck.
func (s *deckServiceImpl) GetDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*DeckView, error) {
	stores := s.tx.Stores()

	deck, err := stores.Decks.GetByID(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	summaries, err := summarizeDecks(ctx, stores.Cards, ownerID, []*domain.Deck{deck}, s.engine.DueCutoff(s.now()))
	if err != nil {
		return nil, NewDeckServiceError("get_deck", "failed to aggregate deck stats", err)
	}

	cards, err := stores.Cards.ListByDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, NewDeckServiceError("get_deck", "failed to list cards", err)
	}

	return &DeckView{Deck: deck, Stats: summaries[0].Stats, Cards: cards}, nil
}

// RenameDeck implements DeckService.RenameDeck.
func (s *deckServiceImpl) RenameDeck(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
	name string,
) (*domain.Deck, error) {
	trimmed, err := domain.ValidateDeckName(name, s.limits)
	if err != nil {
		return nil, err
	}

	var deck *domain.Deck
	err = s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		d, err := st.Decks.GetByID(ctx, ownerID, deckID)
		if err != nil {
			return err
		}

		taken, err := st.Decks.ExistsByName(ctx, ownerID, d.FolderID, trimmed, &d.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameConflict
		}

		d.Name = trimmed
		d.UpdatedAt = s.now().UTC()
		if err := st.Decks.Update(ctx, d); err != nil {
			return err
		}
		deck = d
		return nil
	})
	if err != nil {
		return nil, mapDeckWriteError("rename_deck", err)
	}
	return deck, nil
}

// MoveDeck implements DeckService.MoveDeck.
func (s *deckServiceImpl) MoveDeck(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
	targetFolderID *uuid.UUID,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deck *domain.Deck
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		d, err := st.Decks.GetByID(ctx, ownerID, deckID)
		if err != nil {
			return err
		}

		if targetFolderID != nil {
			if _, err := st.Folders.GetByID(ctx, ownerID, *targetFolderID); err != nil {
				return err
			}
		}

		taken, err := st.Decks.ExistsByName(ctx, ownerID, targetFolderID, d.Name, &d.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameConflict
		}

		d.FolderID = targetFolderID
		d.UpdatedAt = s.now().UTC()
		if err := st.Decks.Update(ctx, d); err != nil {
			return err
		}
		deck = d
		return nil
	})
	if err != nil {
		return nil, mapDeckWriteError("move_deck", err)
	}

	log.Info("deck moved",
		slog.String("owner_id", ownerID.String()),
		slog.String("deck_id", deckID.String()))
	return deck, nil
}

// DeleteDeck implements DeckService.DeleteDeck.
func (s *deckServiceImpl) DeleteDeck(ctx context.Context, ownerID, deckID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var refs []string
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		if _, err := st.Decks.GetByID(ctx, ownerID, deckID); err != nil {
			return err
		}

		var err error
		refs, err = st.Cards.DeleteByDecks(ctx, ownerID, []uuid.UUID{deckID})
		if err != nil {
			return err
		}
		return st.Decks.Delete(ctx, ownerID, deckID)
	})
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return err
		}
		return NewDeckServiceError("delete_deck", "failed to delete deck", err)
	}

	log.Info("deck deleted",
		slog.String("owner_id", ownerID.String()),
		slog.String("deck_id", deckID.String()),
		slog.Int("asset_refs", len(refs)))

	if err := s.assets.Release(ctx, refs); err != nil {
		log.Warn("failed to release assets of deleted deck",
			slog.String("deck_id", deckID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

func mapDeckWriteError(operation string, err error) error {
	switch {
	case errors.Is(err, ErrNameConflict):
		return err
	case errors.Is(err, store.ErrDeckNameExists):
		return fmt.Errorf("%w: %v", ErrNameConflict, err)
	case errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrFolderNotFound),
		errors.Is(err, store.ErrLanguageNotFound):
		return err
	default:
		return NewDeckServiceError(operation, "unexpected store error", err)
	}
}
