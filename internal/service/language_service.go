package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// LanguageService exposes the language catalog.
type LanguageService interface {
	ListLanguages(ctx context.Context) ([]*domain.Language, error)
}

type languageServiceImpl struct {
	languages store.LanguageStore
	logger    *slog.Logger
}

// NewLanguageService creates a new LanguageService.
func NewLanguageService(languages store.LanguageStore, logger *slog.Logger) (LanguageService, error) {
	if languages == nil {
		return nil, domain.NewValidationError("languages", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &languageServiceImpl{
		languages: languages,
		logger:    logger.With(slog.String("component", "language_service")),
	}, nil
}

// ListLanguages implements LanguageService.ListLanguages.
func (s *languageServiceImpl) ListLanguages(ctx context.Context) ([]*domain.Language, error) {
	return s.languages.List(ctx)
}
