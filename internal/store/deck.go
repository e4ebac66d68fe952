package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck.
	// Returns ErrDeckNameExists if a sibling deck already uses the name.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck owned by ownerID.
	// Returns ErrDeckNotFound if the deck does not exist or belongs to someone else.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Deck, error)

	// ListByFolder returns the decks directly inside folderID (nil for root), ordered by name.
	ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]*domain.Deck, error)

	// ListByFolders returns the decks directly inside any of folderIDs.
	ListByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) ([]*domain.Deck, error)

	// ExistsByName reports whether a deck named name exists in the folder
	// scope folderID (nil for root). excludeID, when set, is ignored.
	ExistsByName(
		ctx context.Context,
		ownerID uuid.UUID,
		folderID *uuid.UUID,
		name string,
		excludeID *uuid.UUID,
	) (bool, error)

	// Update persists the name and folder of a deck.
	// Returns ErrDeckNotFound or ErrDeckNameExists.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck. Its cards must be removed first.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// DeleteMany removes the given decks and returns how many were deleted.
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error)
}
