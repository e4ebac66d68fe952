//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/postgres"
	"github.com/phrazzld/wordeck-api/internal/store"
	"github.com/phrazzld/wordeck-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storesForTx(tx *sql.Tx) store.Stores {
	return store.Stores{
		Cards:     postgres.NewPostgresCardStore(tx, nil),
		Decks:     postgres.NewPostgresDeckStore(tx, nil),
		Folders:   postgres.NewPostgresFolderStore(tx, nil),
		Languages: postgres.NewPostgresLanguageStore(tx, nil),
	}
}

func TestPostgresStores_Hierarchy(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := storesForTx(tx)
		owner := uuid.New()

		root, err := domain.NewFolder(owner, "Languages", nil, domain.DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.Folders.Create(ctx, root))

		dup, err := domain.NewFolder(owner, "languages", nil, domain.DefaultLimits())
		require.NoError(t, err)
		assert.ErrorIs(t, s.Folders.Create(ctx, dup), store.ErrFolderNameExists)

		child, err := domain.NewFolder(owner, "German", &root.ID, domain.DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.Folders.Create(ctx, child))

		children, err := s.Folders.ListChildren(ctx, owner, &root.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "German", children[0].Name)

		exists, err := s.Folders.ExistsByName(ctx, owner, nil, "LANGUAGES", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.Folders.ExistsByName(ctx, owner, nil, "Languages", &root.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		deck, err := domain.NewDeck(owner, "Verbs", &child.ID, "en-US", "de-DE", domain.DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.Decks.Create(ctx, deck))

		decks, err := s.Decks.ListByFolders(ctx, owner, []uuid.UUID{root.ID, child.ID})
		require.NoError(t, err)
		require.Len(t, decks, 1)
		assert.Equal(t, &child.ID, decks[0].FolderID)

		_, err = s.Decks.GetByID(ctx, uuid.New(), deck.ID)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})
}

func TestPostgresStores_CardLifecycle(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := storesForTx(tx)
		owner := uuid.New()

		deck, err := domain.NewDeck(owner, "Nouns", nil, "en-US", "de-DE", domain.DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.Decks.Create(ctx, deck))

		card, err := domain.NewCard(owner, deck.ID, domain.CardText{
			TextInKnownLanguage:    "house",
			TextInLearningLanguage: "Haus",
		}, domain.DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.Cards.Create(ctx, card))

		foreign, err := domain.NewCard(uuid.New(), deck.ID, domain.CardText{
			TextInKnownLanguage:    "x",
			TextInLearningLanguage: "y",
		}, domain.DefaultLimits())
		require.NoError(t, err)
		assert.ErrorIs(t, s.Cards.Create(ctx, foreign), store.ErrInvalidEntity)

		newCards, err := s.Cards.FindNew(ctx, owner, deck.ID, 5)
		require.NoError(t, err)
		require.Len(t, newCards, 1)
		assert.Empty(t, newCards[0].SoundURLs)

		refs := []string{"public/tts/f.wav", "public/tts/m.wav"}
		require.NoError(t, s.Cards.UpdateSoundURLs(ctx, owner, card.ID, refs))

		n, err := s.Cards.CountSoundReferences(ctx, "public/tts/f.wav")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		changed, err := s.Cards.MarkLearned(ctx, owner, []uuid.UUID{card.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, changed)

		past := time.Now().UTC().Add(-time.Hour)
		require.NoError(t, s.Cards.UpdateMastery(ctx, owner, card.ID, 30, past))

		due, err := s.Cards.FindDueForReview(ctx, owner, deck.ID, time.Now().UTC().Add(-time.Minute))
		require.NoError(t, err)
		require.Len(t, due, 1)

		stats, err := s.Cards.DeckStats(ctx, owner, []uuid.UUID{deck.ID}, time.Now().UTC().Add(-time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, stats[deck.ID].TotalCards)
		assert.Equal(t, 1, stats[deck.ID].NeedsReviewCards)
		assert.InDelta(t, 30.0, stats[deck.ID].AverageMastery, 0.001)

		deleted, err := s.Cards.DeleteByDecks(ctx, owner, []uuid.UUID{deck.ID})
		require.NoError(t, err)
		assert.Equal(t, refs, deleted)
	})
}

func TestPostgresLanguageStore_Seeded(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	s := postgres.NewPostgresLanguageStore(db, nil)

	lang, err := s.GetByCode(context.Background(), "de-DE")
	require.NoError(t, err)
	assert.Equal(t, "German", lang.Name)

	_, err = s.GetByCode(context.Background(), "xx-XX")
	assert.ErrorIs(t, err, store.ErrLanguageNotFound)
}
