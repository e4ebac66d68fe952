// Package mastery implements the bounded score accumulator that tracks how
// well a card is known.
package mastery

import (
	"errors"
	"time"

	"github.com/phrazzld/wordeck-api/internal/domain"
)

// Common errors
var (
	ErrNilCard = errors.New("card cannot be nil")

	// ErrCardNotLearned is returned when an answer is applied to a card that
	// has not finished a learning session yet.
	ErrCardNotLearned = errors.New("card has not been learned yet")
)

// Engine defines the mastery scoring operations.
type Engine interface {
	// ApplyAnswer returns a copy of card with the answer applied. A correct
	// answer also stamps LastReviewedAt with now; an incorrect one leaves it.
	ApplyAnswer(
		card *domain.Card,
		strategy domain.Strategy,
		isCorrect bool,
		now time.Time,
	) (*domain.Card, error)

	// IsReviewDue reports whether the review interval has elapsed for card.
	IsReviewDue(card *domain.Card, now time.Time) bool

	// DueCutoff returns the instant before which a card's last review must lie
	// for it to be due at now.
	DueCutoff(now time.Time) time.Time
}

// defaultEngine is the standard implementation of the Engine interface
type defaultEngine struct {
	params *Params
}

// NewDefaultEngine creates a new engine with default parameters
func NewDefaultEngine() Engine {
	return &defaultEngine{
		params: NewDefaultParams(),
	}
}

// NewEngineWithParams creates a new engine with custom parameters
func NewEngineWithParams(params *Params) Engine {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultEngine{
		params: params,
	}
}

// ApplyAnswer implements Engine.
func (e *defaultEngine) ApplyAnswer(
	card *domain.Card,
	strategy domain.Strategy,
	isCorrect bool,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	if card.IsNew {
		return nil, ErrCardNotLearned
	}

	due := isReviewDue(card.LastReviewedAt, now, e.params)

	updated := *card
	updated.SoundURLs = append([]string(nil), card.SoundURLs...)
	updated.MasteryScore = calculateNewScore(card.MasteryScore, strategy, isCorrect, due, e.params)
	if isCorrect && now.After(card.LastReviewedAt) {
		updated.LastReviewedAt = now
	}
	updated.UpdatedAt = now

	return &updated, nil
}

// IsReviewDue implements Engine.
func (e *defaultEngine) IsReviewDue(card *domain.Card, now time.Time) bool {
	if card == nil {
		return false
	}
	return isReviewDue(card.LastReviewedAt, now, e.params)
}

// DueCutoff implements Engine.
func (e *defaultEngine) DueCutoff(now time.Time) time.Time {
	return now.Add(-e.params.ReviewInterval)
}
