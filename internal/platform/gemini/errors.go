package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the synthesizer configuration is unusable.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyText is returned when asked to synthesize empty text.
	ErrEmptyText = errors.New("text to synthesize cannot be empty")

	// ErrInvalidResponse is returned when the API answers without usable audio.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters reject the text.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned when retries are exhausted or cancelled.
	ErrTransientFailure = errors.New("transient gemini failure")
)
