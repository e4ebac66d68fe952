package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/wordeck-api/internal/config"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
)

// loadAppConfig loads the configuration and sets up the process logger from it.
func loadAppConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("tts_provider", cfg.TTS.Provider),
		slog.String("storage_backend", cfg.Storage.Backend))
	log.Debug("secrets present",
		slog.Bool("database_url", cfg.Database.URL != ""),
		slog.Bool("jwt_secret", cfg.Auth.JWTSecret != ""),
		slog.Bool("gemini_api_key", cfg.TTS.GeminiAPIKey != ""))

	return cfg, log, nil
}
