package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. The card must pass domain validation.
	// Returns ErrInvalidEntity if the deck does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card owned by ownerID.
	// Returns ErrCardNotFound if the card does not exist or belongs to someone else.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate is GetByID, but the row stays locked until the surrounding
	// transaction ends. Callers that read mastery state and write it back must
	// use this inside a transaction.
	GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error)

	// UpdateText persists the text fields and CEFR level of card.
	// Sound URLs and mastery state are left untouched.
	UpdateText(ctx context.Context, card *domain.Card) error

	// UpdateSoundURLs replaces the ordered asset reference list of a card.
	UpdateSoundURLs(ctx context.Context, ownerID, id uuid.UUID, refs []string) error

	// UpdateMastery atomically sets the score and last review time of a card.
	UpdateMastery(
		ctx context.Context,
		ownerID, id uuid.UUID,
		score float64,
		lastReviewedAt time.Time,
	) error

	// MarkLearned clears the new flag on the given cards. Cards that are
	// already learned or not owned are skipped. Returns the number of cards changed.
	MarkLearned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error)

	// Delete removes a card and returns the asset references it held.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, ownerID, id uuid.UUID) ([]string, error)

	// DeleteByDecks removes every card of the given decks and returns the
	// asset references they held, possibly with duplicates.
	DeleteByDecks(ctx context.Context, ownerID uuid.UUID, deckIDs []uuid.UUID) ([]string, error)

	// ListByDeck returns every card of a deck ordered by creation time.
	ListByDeck(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error)

	// FindNew returns up to limit cards with isNew=true, oldest first.
	FindNew(ctx context.Context, ownerID, deckID uuid.UUID, limit int) ([]*domain.Card, error)

	// FindDueForReview returns learned, unmastered cards last reviewed
	// strictly before dueBefore.
	FindDueForReview(
		ctx context.Context,
		ownerID, deckID uuid.UUID,
		dueBefore time.Time,
	) ([]*domain.Card, error)

	// FindReviewed returns every card with isNew=false regardless of score or timing.
	FindReviewed(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error)

	// FindMastered returns learned cards whose score reached the ceiling.
	FindMastered(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error)

	// CountSoundReferences counts cards, across all owners, whose sound list
	// contains ref.
	CountSoundReferences(ctx context.Context, ref string) (int, error)

	// DeckStats aggregates progress counters for each of deckIDs. Decks
	// without cards are present with zero counters.
	DeckStats(
		ctx context.Context,
		ownerID uuid.UUID,
		deckIDs []uuid.UUID,
		dueBefore time.Time,
	) (map[uuid.UUID]domain.DeckStats, error)

	// CountByFolder returns the number of cards in decks directly inside
	// each folder of the owner. Root decks are not counted.
	CountByFolder(ctx context.Context, ownerID uuid.UUID) (map[uuid.UUID]int, error)
}
