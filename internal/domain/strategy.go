package domain

import "fmt"

// StrategyType identifies the interaction used to answer a card.
type StrategyType string

// The closed set of interaction types.
const (
	StrategyPairIt   StrategyType = "pair_it"
	StrategyGuessIt  StrategyType = "guess_it"
	StrategyRecallIt StrategyType = "recall_it"
	StrategyTypeIt   StrategyType = "type_it"
)

// Strategy holds the reward and penalty applied to the mastery score
// for one interaction type. Both weights are positive.
type Strategy struct {
	Type            StrategyType
	CorrectWeight   float64
	IncorrectWeight float64
}

// StrategyRegistry maps interaction types to their weights.
// It is immutable after construction.
type StrategyRegistry struct {
	strategies map[StrategyType]Strategy
}

// NewStrategyRegistry builds the registry with the canonical weight table.
// Higher-effort interactions reward correct answers more and penalize
// mistakes less.
func NewStrategyRegistry() *StrategyRegistry {
	table := []Strategy{
		{Type: StrategyPairIt, CorrectWeight: 1, IncorrectWeight: 0.7},
		{Type: StrategyGuessIt, CorrectWeight: 2, IncorrectWeight: 0.5},
		{Type: StrategyRecallIt, CorrectWeight: 3, IncorrectWeight: 0.3},
		{Type: StrategyTypeIt, CorrectWeight: 4, IncorrectWeight: 0.1},
	}

	strategies := make(map[StrategyType]Strategy, len(table))
	for _, s := range table {
		strategies[s.Type] = s
	}

	return &StrategyRegistry{strategies: strategies}
}

// Get returns the strategy for the given type.
// Returns ErrUnknownStrategy if the type is not one of the fixed tags.
func (r *StrategyRegistry) Get(t StrategyType) (Strategy, error) {
	s, ok := r.strategies[t]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(t))
	}
	return s, nil
}

// Types lists every registered strategy type in a stable order.
func (r *StrategyRegistry) Types() []StrategyType {
	return []StrategyType{StrategyPairIt, StrategyGuessIt, StrategyRecallIt, StrategyTypeIt}
}

// IsValid reports whether t is one of the fixed interaction tags.
func (t StrategyType) IsValid() bool {
	switch t {
	case StrategyPairIt, StrategyGuessIt, StrategyRecallIt, StrategyTypeIt:
		return true
	default:
		return false
	}
}
