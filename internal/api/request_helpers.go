package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/redact"
)

// getOwnerIDFromContext returns the owner ID placed in the context by the
// auth middleware, or false when it is missing.
func getOwnerIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.OwnerIDFromContext(r.Context())
}

// getPathUUID parses the named chi URL parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// getQueryInt parses an optional non-negative integer query parameter.
// A missing parameter yields def.
func getQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer", domain.ErrValidation)
	}
	return n, nil
}

// requireOwner writes a 401 and returns false when the request carries no owner.
func requireOwner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	ownerID, ok := getOwnerIDFromContext(r)
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner ID not found or invalid")
		return uuid.Nil, false
	}
	return ownerID, true
}

// handleOwnerIDAndPathUUID extracts both the owner ID and the named path UUID,
// writing the error response itself when either is missing.
func handleOwnerIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param", paramName),
			slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, id, true
}

// decodeAndValidate decodes the JSON body into req and validates it, writing
// a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any, log *slog.Logger) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		message := SanitizeValidationError(err)
		var domainErr *domain.ValidationError
		if errors.As(err, &domainErr) {
			message = GetSafeErrorMessage(err)
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
		return false
	}
	return true
}
