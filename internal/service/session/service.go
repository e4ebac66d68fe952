// Package session schedules learning and review sessions over the cards of a
// deck. A session is not persisted: its state is entirely derived from the
// isNew flag, the mastery score and the last review time of each card.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
)

// Answer is the outcome of one card interaction in a review session.
type Answer struct {
	IsCorrect bool                `json:"is_correct_answer"`
	Strategy  domain.StrategyType `json:"type_of_strategy"`
}

// Scheduler selects cards for sessions and records review answers.
type Scheduler interface {
	// StartLearningSession returns up to limit new cards of a deck, oldest
	// first. A limit of zero or less uses the configured default.
	//
	// Returns:
	//   - store.ErrDeckNotFound if the deck does not exist for the owner
	//   - ErrNoCardsToLearn if the deck has no new cards
	StartLearningSession(ctx context.Context, ownerID, deckID uuid.UUID, limit int) ([]*domain.Card, error)

	// FinishLearningSession marks the given cards as learned. Cards that are
	// already learned, unknown or owned by someone else are skipped, so
	// repeating the call is harmless. Returns the number of cards changed.
	FinishLearningSession(ctx context.Context, ownerID uuid.UUID, cardIDs []uuid.UUID) (int, error)

	// StartReviewSession returns the learned, unmastered cards of a deck
	// whose review interval has elapsed.
	//
	// Returns:
	//   - store.ErrDeckNotFound if the deck does not exist for the owner
	//   - ErrNoCardsToReview if no card is due
	StartReviewSession(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error)

	// StartReviewAllCardsSession returns every learned card of a deck,
	// regardless of score or timing.
	StartReviewAllCardsSession(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error)

	// FinishReviewCard applies one answer to a card and persists the new
	// score and review time in a single transaction. The card row is locked
	// for the read-modify-write, so concurrent answers for one card all apply.
	//
	// A card that is still new is deliberately rejected rather than scored,
	// even though the answer itself is well formed: new cards hold a zero
	// score until FinishLearningSession flips them, and the API reports the
	// rejection as 409 Conflict.
	//
	// Returns:
	//   - domain.ErrUnknownStrategy for interaction types outside the fixed set
	//   - store.ErrCardNotFound if the card does not exist for the owner
	//   - mastery.ErrCardNotLearned if the card is still new
	FinishReviewCard(ctx context.Context, ownerID, cardID uuid.UUID, answer Answer) (*domain.Card, error)
}

// Common error types for Scheduler
var (
	// ErrNoCardsToLearn indicates that the deck has no new cards.
	ErrNoCardsToLearn = errors.New("no cards to learn")

	// ErrNoCardsToReview indicates that the deck has no cards to review.
	ErrNoCardsToReview = errors.New("no cards to review")
)

// ServiceError wraps unexpected errors from the scheduler with the operation
// that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_review_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
