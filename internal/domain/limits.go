package domain

import (
	"strings"
	"unicode/utf8"
)

// Limits holds the text length bounds enforced on folders, decks and cards.
// A Limits value is built from configuration once and passed to every
// constructor that validates user supplied text.
type Limits struct {
	MaxFolderNameLength  int
	MaxDeckNameLength    int
	MaxWordLength        int
	MaxDescriptionLength int
}

// DefaultLimits returns the limits used when configuration does not override them.
func DefaultLimits() Limits {
	return Limits{
		MaxFolderNameLength:  50,
		MaxDeckNameLength:    50,
		MaxWordLength:        100,
		MaxDescriptionLength: 100,
	}
}

// validateText trims value and checks it against max runes.
// Empty values are rejected only when required is true.
func validateText(field, value string, max int, required bool) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if required {
			return "", NewValidationError(field, "cannot be empty", ErrEmptyContent)
		}
		return "", nil
	}
	if max > 0 && utf8.RuneCountInString(trimmed) > max {
		return "", NewValidationError(field, "is too long", ErrTooLong)
	}
	return trimmed, nil
}
