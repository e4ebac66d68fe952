package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the subset of genai.Models the synthesizer calls.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config holds the settings of a Synthesizer.
type Config struct {
	APIKey      string
	ModelName   string
	FemaleVoice string
	MaleVoice   string
	MaxRetries  int
	RetryDelay  time.Duration
}

// Synthesizer implements asset.Synthesizer with Gemini TTS models.
type Synthesizer struct {
	models contentGenerator
	cfg    Config
	logger *slog.Logger
	rng    *rand.Rand
}

// Ensure Synthesizer implements asset.Synthesizer
var _ asset.Synthesizer = (*Synthesizer)(nil)

// NewSynthesizer creates a Gemini client and wraps it in a Synthesizer.
func NewSynthesizer(ctx context.Context, cfg Config, logger *slog.Logger) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newSynthesizer(client.Models, cfg, logger)
}

func newSynthesizer(models contentGenerator, cfg Config, logger *slog.Logger) (*Synthesizer, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Synthesizer{
		models: models,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "gemini_synthesizer")),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Format implements asset.Synthesizer.
func (s *Synthesizer) Format() asset.Format {
	return asset.Format{Extension: "wav", ContentType: "audio/wav"}
}

// Synthesize implements asset.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, req asset.Request) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	voice := req.VoiceName
	if voice == "" {
		voice = s.cfg.FemaleVoice
		if req.Gender == domain.VoiceGenderMale {
			voice = s.cfg.MaleVoice
		}
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildPrompt(text, req.LanguageCode)}},
	}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
	}
	if voice != "" {
		config.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		}
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.models.GenerateContent(ctx, s.cfg.ModelName, contents, config)
		if err == nil {
			var wav []byte
			wav, err = extractAudio(resp)
			if err == nil {
				log.Debug("speech synthesized",
					slog.String("language_code", req.LanguageCode),
					slog.String("voice", voice),
					slog.Int("attempt", attempt+1))
				return wav, nil
			}
		}

		if !isTransient(err) {
			log.Warn("speech synthesis failed permanently",
				slog.String("error", err.Error()),
				slog.Int("attempt", attempt+1))
			return nil, err
		}

		if attempt >= s.cfg.MaxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, s.cfg.MaxRetries, err)
		}

		delay := s.backoff(attempt)
		log.Info("retrying speech synthesis after delay",
			slog.String("error", err.Error()),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns baseDelay * 2^attempt scaled by a jitter factor in [0.5, 1).
func (s *Synthesizer) backoff(attempt int) time.Duration {
	base := float64(s.cfg.RetryDelay) * math.Pow(2, float64(attempt))
	return time.Duration(base * (0.5 + s.rng.Float64()*0.5))
}

func buildPrompt(text, languageCode string) string {
	if languageCode == "" {
		return "Say slowly and clearly: " + text
	}
	return fmt.Sprintf("Say slowly and clearly, in the language %s: %s", languageCode, text)
}

func extractAudio(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var pcm []byte
	mimeType := ""
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		if mimeType == "" {
			mimeType = part.InlineData.MIMEType
		}
		pcm = append(pcm, part.InlineData.Data...)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: no audio data", ErrInvalidResponse)
	}

	return encodeWAV(pcm, parsePCMMimeType(mimeType)), nil
}

// isTransient reports whether err is worth retrying. Rate limiting and
// server side errors are; client errors and response problems are not.
func isTransient(err error) bool {
	if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retryableStatus(apiErrPtr.Code)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
