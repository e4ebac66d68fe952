package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/service"
)

// LanguageHandler serves the language catalog.
type LanguageHandler struct {
	languages service.LanguageService
	logger    *slog.Logger
}

// NewLanguageHandler creates a new LanguageHandler.
func NewLanguageHandler(languages service.LanguageService, logger *slog.Logger) *LanguageHandler {
	if languages == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("languages and logger are required for LanguageHandler")
	}
	return &LanguageHandler{
		languages: languages,
		logger:    logger.With(slog.String("component", "language_handler")),
	}
}

// ListLanguages handles GET /languages.
func (h *LanguageHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.languages.ListLanguages(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list languages")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LanguageListResponse{Languages: languages})
}
