//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/platform/postgres"
	"github.com/phrazzld/wordeck-api/internal/service/session"
	"github.com/phrazzld/wordeck-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Concurrent answers for one card must serialize on the card row; otherwise
// both read the same score and the second write discards the first delta.
func TestFinishReviewCard_ConcurrentAnswersOnPostgres(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	tx := postgres.NewTransactor(db, nil)
	stores := tx.Stores()
	owner := uuid.New()

	deck, err := domain.NewDeck(owner, "Concurrency", nil, "en-US", "de-DE", domain.DefaultLimits())
	require.NoError(t, err)
	require.NoError(t, stores.Decks.Create(ctx, deck))

	card, err := domain.NewCard(owner, deck.ID, domain.CardText{
		TextInKnownLanguage:    "house",
		TextInLearningLanguage: "Haus",
	}, domain.DefaultLimits())
	require.NoError(t, err)
	require.NoError(t, stores.Cards.Create(ctx, card))

	t.Cleanup(func() {
		_, _ = stores.Cards.Delete(context.Background(), owner, card.ID)
		_ = stores.Decks.Delete(context.Background(), owner, deck.ID)
	})

	_, err = stores.Cards.MarkLearned(ctx, owner, []uuid.UUID{card.ID})
	require.NoError(t, err)
	require.NoError(t, stores.Cards.UpdateMastery(ctx, owner, card.ID, 50, time.Now().UTC().Add(-time.Hour)))

	scheduler := session.NewScheduler(
		tx,
		domain.NewStrategyRegistry(),
		mastery.NewDefaultEngine(),
		session.Config{},
		nil,
	)

	// Incorrect answers never touch last_reviewed_at, so every delta is the
	// same regardless of ordering.
	const answers = 8
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < answers; i++ {
		g.Go(func() error {
			_, err := scheduler.FinishReviewCard(gctx, owner, card.ID, session.Answer{
				IsCorrect: false,
				Strategy:  domain.StrategyPairIt,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	stored, err := stores.Cards.GetByID(ctx, owner, card.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50-answers*0.7, stored.MasteryScore, 1e-9)
}
