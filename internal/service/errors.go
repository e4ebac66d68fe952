package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services in this package. Store errors such
// as store.ErrFolderNotFound are passed through wrapped and can be checked
// with errors.Is as well.
var (
	// ErrNameConflict indicates that a sibling folder or deck already uses the name.
	// API layer should map this to HTTP 409 Conflict.
	ErrNameConflict = errors.New("name already used in this location")

	// ErrParentNotFound indicates that the requested parent folder does not
	// exist for the owner.
	ErrParentNotFound = errors.New("parent folder not found")

	// ErrInvalidMove indicates an attempt to move a folder into itself or one
	// of its descendants.
	ErrInvalidMove = errors.New("folder cannot be moved into itself or a descendant")
)

// ServiceError is a custom error type for service errors that carries the
// failing operation.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewFolderServiceError creates a ServiceError for the folder service.
func NewFolderServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "folder", Operation: operation, Message: message, Err: err}
}

// NewDeckServiceError creates a ServiceError for the deck service.
func NewDeckServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "deck", Operation: operation, Message: message, Err: err}
}

// NewCardServiceError creates a ServiceError for the card service.
func NewCardServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "card", Operation: operation, Message: message, Err: err}
}
