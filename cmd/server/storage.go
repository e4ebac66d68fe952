package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/config"
	"github.com/phrazzld/wordeck-api/internal/platform/filestore"
	"github.com/phrazzld/wordeck-api/internal/platform/gemini"
	"github.com/phrazzld/wordeck-api/internal/platform/objectstore"
)

// setupBlobs returns the blob backend selected by the storage config.
func setupBlobs(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (asset.Blobs, error) {
	switch cfg.Backend {
	case "filesystem":
		return filestore.New(cfg.LocalDir, logger)
	case "minio":
		return objectstore.New(ctx, objectstore.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			Prefix:    cfg.PublicPrefix,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// setupSynthesizer returns the speech synthesizer selected by the TTS config.
// With provider "none" cards are created without audio.
func setupSynthesizer(ctx context.Context, cfg config.TTSConfig, logger *slog.Logger) (asset.Synthesizer, error) {
	switch cfg.Provider {
	case "none":
		logger.Info("speech synthesis disabled")
		return asset.DisabledSynthesizer{}, nil
	case "gemini":
		synth, err := gemini.NewSynthesizer(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			ModelName:   cfg.ModelName,
			FemaleVoice: cfg.FemaleVoice,
			MaleVoice:   cfg.MaleVoice,
			MaxRetries:  cfg.MaxRetries,
			RetryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini synthesizer: %w", err)
		}
		logger.Info("gemini synthesizer initialized", slog.String("model", cfg.ModelName))
		return synth, nil
	default:
		return nil, fmt.Errorf("unsupported TTS provider %q", cfg.Provider)
	}
}

// assetConfig maps the TTS and storage settings onto asset.Config.
func assetConfig(cfg *config.Config) asset.Config {
	return asset.Config{
		PublicPrefix:      cfg.Storage.PublicPrefix,
		MaxConcurrent:     cfg.TTS.MaxConcurrent,
		RequestsPerSecond: cfg.TTS.RequestsPerSecond,
		Burst:             cfg.TTS.Burst,
		Timeout:           time.Duration(cfg.TTS.TimeoutSeconds) * time.Second,
	}
}
