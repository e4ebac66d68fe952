package mastery

import (
	"time"

	"github.com/phrazzld/wordeck-api/internal/domain"
)

// calculateNewScore applies one answer to a mastery score.
//
// Parameters:
//   - current: The card's current score, expected in [0,100]
//   - strategy: The weights of the interaction used to answer
//   - isCorrect: Whether the answer was correct
//   - isReviewDue: Whether the review interval had elapsed when answering
//   - params: Configuration parameters for the accumulator
//
// Returns:
//   - The new score, always clamped to [domain.MinMasteryScore, domain.MaxMasteryScore]
//
// Algorithm behavior:
//   - A correct answer adds strategy.CorrectWeight, divided by
//     params.DampeningFactor when the card was not yet due
//   - An incorrect answer subtracts strategy.IncorrectWeight
//   - An input outside the bounds is clamped before the delta is applied
func calculateNewScore(
	current float64,
	strategy domain.Strategy,
	isCorrect bool,
	isReviewDue bool,
	params *Params,
) float64 {
	score := clamp(current)

	if isCorrect {
		delta := strategy.CorrectWeight
		if !isReviewDue && params.DampeningFactor > 0 {
			delta /= params.DampeningFactor
		}
		return clamp(score + delta)
	}

	return clamp(score - strategy.IncorrectWeight)
}

// isReviewDue reports whether lastReviewedAt lies strictly before now - interval.
func isReviewDue(lastReviewedAt, now time.Time, params *Params) bool {
	return lastReviewedAt.Before(now.Add(-params.ReviewInterval))
}

func clamp(score float64) float64 {
	if score < domain.MinMasteryScore {
		return domain.MinMasteryScore
	}
	if score > domain.MaxMasteryScore {
		return domain.MaxMasteryScore
	}
	return score
}
