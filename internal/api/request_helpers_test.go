package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withURLParam returns r with a chi route context carrying one URL parameter.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	got, err := getPathUUID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	_, err = getPathUUID(r, "id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = getPathUUID(httptest.NewRequest(http.MethodGet, "/", nil), "id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetQueryInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 5, false},
		{"?count=12", 12, false},
		{"?count=0", 0, false},
		{"?count=-3", 0, true},
		{"?count=many", 0, true},
	}

	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
		got, err := getQueryInt(r, "count", 5)
		if tc.wantErr {
			assert.Error(t, err, tc.query)
			continue
		}
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want, got, tc.query)
	}
}

func TestHandleOwnerIDAndPathUUID(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ownerID := uuid.New()
	id := uuid.New()

	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	r = r.WithContext(shared.WithOwnerID(r.Context(), ownerID))
	w := httptest.NewRecorder()
	gotOwner, gotID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	require.True(t, ok)
	assert.Equal(t, ownerID, gotOwner)
	assert.Equal(t, id, gotID)

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	w = httptest.NewRecorder()
	_, _, ok = handleOwnerIDAndPathUUID(w, r, "id", log)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "bad")
	r = r.WithContext(shared.WithOwnerID(r.Context(), ownerID))
	w = httptest.NewRecorder()
	_, _, ok = handleOwnerIDAndPathUUID(w, r, "id", log)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
