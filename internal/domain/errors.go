// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrTooLong is returned when a text value exceeds its configured limit.
	ErrTooLong = errors.New("value exceeds maximum length")

	// ErrUnknownStrategy is returned when an interaction type is outside the closed strategy set.
	ErrUnknownStrategy = errors.New("unknown learning strategy")

	// ErrFolderCycle is returned when a folder tree walk revisits a node or exceeds the depth bound.
	ErrFolderCycle = errors.New("folder hierarchy contains a cycle")

	// ErrFolderTooDeep is returned when a create or move would nest folders
	// beyond the configured maximum depth.
	ErrFolderTooDeep = errors.New("folder nesting too deep")
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
