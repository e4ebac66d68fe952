package mastery

import "time"

// Params defines the configurable parameters of the mastery accumulator.
type Params struct {
	// ReviewInterval is the elapsed time after which a card is due for review again.
	ReviewInterval time.Duration

	// DampeningFactor divides the reward of a correct answer given before the
	// card was due.
	DampeningFactor float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	ReviewInterval  time.Duration
	DampeningFactor float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		ReviewInterval:  time.Minute,
		DampeningFactor: 5,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.ReviewInterval > 0 {
		params.ReviewInterval = config.ReviewInterval
	}
	// A factor below 1 would amplify early answers instead of dampening them.
	if config.DampeningFactor >= 1 {
		params.DampeningFactor = config.DampeningFactor
	}

	return params
}
