package store

import (
	"context"

	"github.com/phrazzld/wordeck-api/internal/domain"
)

// LanguageStore provides read access to the language catalog.
type LanguageStore interface {
	// List returns every language ordered by name.
	List(ctx context.Context) ([]*domain.Language, error)

	// GetByCode returns one language. Returns ErrLanguageNotFound for unknown codes.
	GetByCode(ctx context.Context, code string) (*domain.Language, error)
}
