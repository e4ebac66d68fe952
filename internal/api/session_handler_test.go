package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestSessionHandler_LearnThenReview(t *testing.T) {
	s := newTestServer(t)
	deck := s.createDeck("Verbs", nil)
	first := s.createCard(deck.ID, "to go", "gehen")
	second := s.createCard(deck.ID, "to see", "sehen")
	s.createCard(deck.ID, "to eat", "essen")
	deckPath := "/api/decks/" + deck.ID.String()

	w := s.do(http.MethodGet, deckPath+"/learning-session?count=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[CardListResponse](t, w)
	require.Len(t, session.Cards, 2)
	assert.Equal(t, first.ID, session.Cards[0].ID)
	assert.Equal(t, second.ID, session.Cards[1].ID)

	// Answering a card that is still new is refused and leaves it unscored.
	w = s.do(http.MethodPost, "/api/cards/"+first.ID.String()+"/review",
		ReviewAnswerRequest{IsCorrect: boolPtr(true), Strategy: "pair_it"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[shared.ErrorResponse](t, w).Error, "Card has not been learned yet")

	w = s.do(http.MethodGet, "/api/cards/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	unscored := decode[domain.Card](t, w)
	assert.True(t, unscored.IsNew)
	assert.Zero(t, unscored.MasteryScore)

	w = s.do(http.MethodPost, "/api/learning-session/finish",
		FinishLearningSessionRequest{CardIDs: []uuid.UUID{first.ID, second.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[FinishLearningSessionResponse](t, w).Learned)

	// Finishing again changes nothing.
	w = s.do(http.MethodPost, "/api/learning-session/finish",
		FinishLearningSessionRequest{CardIDs: []uuid.UUID{first.ID, second.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[FinishLearningSessionResponse](t, w).Learned)

	// Freshly learned cards are not due yet.
	w = s.do(http.MethodGet, deckPath+"/review-session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[shared.ErrorResponse](t, w).Error, "No cards to review")

	w = s.do(http.MethodGet, deckPath+"/review-session/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[CardListResponse](t, w).Cards, 2)

	w = s.do(http.MethodPost, "/api/cards/"+first.ID.String()+"/review",
		ReviewAnswerRequest{IsCorrect: boolPtr(true), Strategy: "type_it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reviewed := decode[domain.Card](t, w)
	assert.False(t, reviewed.IsNew)
	assert.Greater(t, reviewed.MasteryScore, 0.0)
	assert.LessOrEqual(t, reviewed.MasteryScore, 100.0)

	w = s.do(http.MethodPost, "/api/cards/"+first.ID.String()+"/review",
		ReviewAnswerRequest{IsCorrect: boolPtr(false), Strategy: "type_it"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, decode[domain.Card](t, w).MasteryScore, reviewed.MasteryScore)

	// Only one new card is left.
	w = s.do(http.MethodGet, deckPath+"/learning-session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[CardListResponse](t, w).Cards, 1)
}

func TestSessionHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	deck := s.createDeck("Empty", nil)
	missing := uuid.New()

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"no new cards", http.MethodGet, "/api/decks/" + deck.ID.String() + "/learning-session", nil,
			http.StatusNotFound, "No cards to learn"},
		{"negative count", http.MethodGet, "/api/decks/" + deck.ID.String() + "/learning-session?count=-1", nil,
			http.StatusBadRequest, "Invalid count"},
		{"unknown deck", http.MethodGet, "/api/decks/" + missing.String() + "/review-session", nil,
			http.StatusNotFound, "Deck not found"},
		{"empty finish", http.MethodPost, "/api/learning-session/finish", FinishLearningSessionRequest{},
			http.StatusBadRequest, "Invalid card_ids"},
		{"unknown strategy", http.MethodPost, "/api/cards/" + missing.String() + "/review",
			ReviewAnswerRequest{IsCorrect: boolPtr(true), Strategy: "spell_it"},
			http.StatusBadRequest, "Unknown strategy type"},
		{"missing answer", http.MethodPost, "/api/cards/" + missing.String() + "/review",
			ReviewAnswerRequest{Strategy: "pair_it"},
			http.StatusBadRequest, "Invalid is_correct_answer: required field"},
		{"unknown card", http.MethodPost, "/api/cards/" + missing.String() + "/review",
			ReviewAnswerRequest{IsCorrect: boolPtr(false), Strategy: "pair_it"},
			http.StatusNotFound, "Card not found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, decode[shared.ErrorResponse](t, w).Error, tc.wantError)
		})
	}
}
