package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/api/middleware"
	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/config"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/platform/filestore"
	"github.com/phrazzld/wordeck-api/internal/service"
	"github.com/phrazzld/wordeck-api/internal/service/auth"
	"github.com/phrazzld/wordeck-api/internal/service/session"
	"github.com/phrazzld/wordeck-api/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "thisisasecretkeythatis32charslong!!"

// testServer wires the handlers over an in-memory store and a temp-dir blob
// store, with speech synthesis disabled.
type testServer struct {
	t       *testing.T
	handler http.Handler
	jwt     auth.JWTService
	token   string
	owner   uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := memstore.New(log)
	db.SeedLanguages(
		&domain.Language{Code: "en-US", Name: "English", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
		&domain.Language{Code: "de-DE", Name: "German", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	)

	blobs, err := filestore.New(t.TempDir(), log)
	require.NoError(t, err)
	assets, err := asset.NewStore(blobs, asset.DisabledSynthesizer{}, db.Stores().Cards,
		asset.Config{PublicPrefix: "public/tts"}, log)
	require.NoError(t, err)

	engine := mastery.NewDefaultEngine()
	limits := domain.DefaultLimits()

	folderService, err := service.NewFolderService(db, assets, engine, limits, domain.DefaultMaxFolderDepth, log)
	require.NoError(t, err)
	deckService, err := service.NewDeckService(db, assets, engine, limits, log)
	require.NoError(t, err)
	cardService, err := service.NewCardService(db, assets, limits, log)
	require.NoError(t, err)
	languageService, err := service.NewLanguageService(db.Stores().Languages, log)
	require.NoError(t, err)
	scheduler := session.NewScheduler(db, domain.NewStrategyRegistry(), engine, session.Config{
		DefaultLearningSessionSize: 5,
		MaxLearningSessionSize:     50,
	}, log)

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testJWTSecret})
	require.NoError(t, err)

	folders := NewFolderHandler(folderService, log)
	decks := NewDeckHandler(deckService, log)
	cards := NewCardHandler(cardService, log)
	sessions := NewSessionHandler(scheduler, log)
	languages := NewLanguageHandler(languageService, log)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(jwtService).Authenticate)

		r.Get("/dashboard", folders.Dashboard)
		r.Get("/languages", languages.ListLanguages)

		r.Post("/folders", folders.CreateFolder)
		r.Get("/folders/{id}", folders.GetFolder)
		r.Patch("/folders/{id}", folders.RenameFolder)
		r.Post("/folders/{id}/move", folders.MoveFolder)
		r.Delete("/folders/{id}", folders.DeleteFolder)

		r.Post("/decks", decks.CreateDeck)
		r.Get("/decks/{id}", decks.GetDeck)
		r.Patch("/decks/{id}", decks.RenameDeck)
		r.Post("/decks/{id}/move", decks.MoveDeck)
		r.Delete("/decks/{id}", decks.DeleteDeck)
		r.Get("/decks/{id}/learning-session", sessions.StartLearningSession)
		r.Get("/decks/{id}/review-session", sessions.StartReviewSession)
		r.Get("/decks/{id}/review-session/all", sessions.StartReviewAllCardsSession)
		r.Post("/learning-session/finish", sessions.FinishLearningSession)

		r.Post("/cards", cards.CreateCard)
		r.Get("/cards/{id}", cards.GetCard)
		r.Put("/cards/{id}", cards.UpdateCard)
		r.Delete("/cards/{id}", cards.DeleteCard)
		r.Post("/cards/{id}/review", sessions.FinishReviewCard)
	})

	s := &testServer{t: t, handler: r, jwt: jwtService, owner: uuid.New()}
	s.token = s.tokenFor(s.owner)
	return s
}

func (s *testServer) tokenFor(ownerID uuid.UUID) string {
	s.t.Helper()
	token, err := s.jwt.GenerateToken(context.Background(), ownerID, time.Hour)
	require.NoError(s.t, err)
	return token
}

// do sends a request as the server's owner. body is JSON encoded unless it is
// a string, which is sent verbatim.
func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.doAs(s.token, method, path, body)
}

func (s *testServer) doAs(token, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into a value of type T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) createFolder(name string, parentID *uuid.UUID) domain.Folder {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/folders", CreateFolderRequest{Name: name, ParentID: parentID})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Folder](s.t, w)
}

func (s *testServer) createDeck(name string, folderID *uuid.UUID) domain.Deck {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/decks", CreateDeckRequest{
		Name:                 name,
		FolderID:             folderID,
		KnownLanguageCode:    "en-US",
		LearningLanguageCode: "de-DE",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Deck](s.t, w)
}

func (s *testServer) createCard(deckID uuid.UUID, known, learning string) domain.Card {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/cards", CreateCardRequest{
		DeckID: deckID,
		CardTextRequest: CardTextRequest{
			TextInKnownLanguage:    known,
			TextInLearningLanguage: learning,
		},
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Card](s.t, w)
}
