package asset

import (
	"context"
	"errors"

	"github.com/phrazzld/wordeck-api/internal/domain"
)

var (
	// ErrSynthesisUnavailable is returned when no synthesizer is configured.
	ErrSynthesisUnavailable = errors.New("speech synthesis is not configured")

	// ErrSynthesisFailed wraps any failure of the upstream synthesis call.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrInvalidRef is returned for references that do not name an asset.
	ErrInvalidRef = errors.New("invalid asset reference")
)

// Blobs persists asset bytes under a flat name.
type Blobs interface {
	Exists(ctx context.Context, name string) (bool, error)
	Put(ctx context.Context, name string, data []byte, contentType string) error
	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}

// Format describes the encoding a Synthesizer produces.
type Format struct {
	Extension   string
	ContentType string
}

// Request identifies one audio rendering of a text.
type Request struct {
	Text         string
	LanguageCode string
	Gender       domain.VoiceGender
	// VoiceName selects a provider voice. It does not take part in the hash.
	VoiceName string
}

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	Format() Format
}

// ReferenceCounter counts cards whose sound list contains a reference.
type ReferenceCounter interface {
	CountSoundReferences(ctx context.Context, ref string) (int, error)
}

// DisabledSynthesizer is used when no speech provider is configured.
// Every call fails with ErrSynthesisUnavailable.
type DisabledSynthesizer struct{}

// Synthesize implements Synthesizer.
func (DisabledSynthesizer) Synthesize(context.Context, Request) ([]byte, error) {
	return nil, ErrSynthesisUnavailable
}

// Format implements Synthesizer.
func (DisabledSynthesizer) Format() Format {
	return Format{Extension: "wav", ContentType: "audio/wav"}
}
