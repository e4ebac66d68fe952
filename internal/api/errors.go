package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/service"
	"github.com/phrazzld/wordeck-api/internal/service/auth"
	"github.com/phrazzld/wordeck-api/internal/service/session"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never reach the client.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingOwner):
		return http.StatusUnauthorized

	// Empty sessions
	case errors.Is(err, session.ErrNoCardsToLearn),
		errors.Is(err, session.ErrNoCardsToReview):
		return http.StatusNotFound

	// Not found errors
	case errors.Is(err, service.ErrParentNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrNameConflict),
		store.IsDuplicateError(err),
		errors.Is(err, mastery.ErrCardNotLearned):
		return http.StatusConflict

	// Bad request errors
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrTooLong),
		errors.Is(err, domain.ErrUnknownStrategy),
		errors.Is(err, domain.ErrInvalidCEFRLevel),
		errors.Is(err, service.ErrInvalidMove),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingOwner):
		return "Invalid token"

	case errors.Is(err, session.ErrNoCardsToLearn):
		return "No cards to learn"
	case errors.Is(err, session.ErrNoCardsToReview):
		return "No cards to review"

	case errors.Is(err, service.ErrParentNotFound):
		return "Parent folder not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrFolderNotFound):
		return "Folder not found"
	case errors.Is(err, store.ErrLanguageNotFound):
		return "Language not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, service.ErrNameConflict),
		store.IsDuplicateError(err):
		return "Name already used in this location"
	case errors.Is(err, mastery.ErrCardNotLearned):
		return "Card has not been learned yet"

	case errors.Is(err, service.ErrInvalidMove):
		return "Folder cannot be moved into itself or a descendant"
	case errors.Is(err, domain.ErrUnknownStrategy):
		return "Unknown strategy type"
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, domain.ErrInvalidCEFRLevel):
		return "Invalid CEFR level"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrTooLong),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. When the status
// is 500 and fallback is non-empty, fallback replaces the generic message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field. Other errors get a generic message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	field := verrs[0].Field()
	if field == "" {
		return "Validation error"
	}
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(verrs[0].Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "min", "gte":
		return "too short"
	case "max", "lte":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "invalid ID format"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}
