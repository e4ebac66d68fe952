package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
)

// FolderStore defines the interface for folder data persistence.
type FolderStore interface {
	// Create saves a new folder.
	// Returns ErrFolderNameExists if a sibling folder already uses the name.
	Create(ctx context.Context, folder *domain.Folder) error

	// GetByID retrieves a folder owned by ownerID.
	// Returns ErrFolderNotFound if the folder does not exist or belongs to someone else.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Folder, error)

	// ListByOwner returns every folder of the owner. It is the input of domain.FolderTree.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Folder, error)

	// ListChildren returns the direct children of parentID (nil for root), ordered by name.
	ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*domain.Folder, error)

	// ExistsByName reports whether a folder named name exists under parentID
	// (nil for root). excludeID, when set, is ignored.
	ExistsByName(
		ctx context.Context,
		ownerID uuid.UUID,
		parentID *uuid.UUID,
		name string,
		excludeID *uuid.UUID,
	) (bool, error)

	// Update persists the name and parent of a folder.
	// Returns ErrFolderNotFound or ErrFolderNameExists.
	Update(ctx context.Context, folder *domain.Folder) error

	// DeleteMany removes the given folders and returns how many were deleted.
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error)
}
