package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrFolderOwnerIDEmpty is returned when a folder's owner ID is empty or nil.
var ErrFolderOwnerIDEmpty = errors.New("folder owner ID cannot be empty")

// Folder is a node of the per-owner folder tree. A nil ParentID marks a root folder.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewFolder creates a folder under parentID (nil for root).
func NewFolder(ownerID uuid.UUID, name string, parentID *uuid.UUID, limits Limits) (*Folder, error) {
	if ownerID == uuid.Nil {
		return nil, ErrFolderOwnerIDEmpty
	}

	trimmed, err := ValidateFolderName(name, limits)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Folder{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      trimmed,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateFolderName trims name and checks it against the configured limit.
func ValidateFolderName(name string, limits Limits) (string, error) {
	return validateText("name", name, limits.MaxFolderNameLength, true)
}

// Breadcrumb is one step of the path from the root to a folder.
type Breadcrumb struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SameParent reports whether two optional parent IDs denote the same sibling group.
// Two nil values both denote the root group.
func SameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
