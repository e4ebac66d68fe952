package store

import (
	"errors"
	"fmt"
)

// Generic store errors. Implementations wrap them, usually through one of the
// entity-specific errors below, so callers can match either level.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrTransactionFailed = errors.New("transaction failed")
)

// Entity-specific errors. Lookups are scoped by owner, so a row owned by
// someone else is reported as not found.
var (
	ErrCardNotFound     = fmt.Errorf("%w: card", ErrNotFound)
	ErrDeckNotFound     = fmt.Errorf("%w: deck", ErrNotFound)
	ErrFolderNotFound   = fmt.Errorf("%w: folder", ErrNotFound)
	ErrLanguageNotFound = fmt.Errorf("%w: language", ErrNotFound)

	// Sibling names are compared case-insensitively.
	ErrFolderNameExists = fmt.Errorf("%w: folder name", ErrDuplicate)
	ErrDeckNameExists   = fmt.Errorf("%w: deck name", ErrDuplicate)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
