package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/store"
	"github.com/phrazzld/wordeck-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *memstore.DB
	scheduler *schedulerImpl
	owner     uuid.UUID
	deck      *domain.Deck
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: memstore.New(nil), owner: uuid.New(), clock: baseTime}

	s := NewScheduler(
		f.db,
		domain.NewStrategyRegistry(),
		mastery.NewDefaultEngine(),
		Config{DefaultLearningSessionSize: 5, MaxLearningSessionSize: 10},
		nil,
	).(*schedulerImpl)
	s.now = func() time.Time { return f.clock }
	f.scheduler = s

	deck, err := domain.NewDeck(f.owner, "Basics", nil, "en-US", "de-DE", domain.DefaultLimits())
	require.NoError(t, err)
	require.NoError(t, f.db.Stores().Decks.Create(context.Background(), deck))
	f.deck = deck
	return f
}

// addCard stores a card created at createdAt. Cards created earlier come first.
func (f *fixture) addCard(t *testing.T, word string, createdAt time.Time) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(f.owner, f.deck.ID, domain.CardText{
		TextInKnownLanguage:    word,
		TextInLearningLanguage: word,
	}, domain.DefaultLimits())
	require.NoError(t, err)
	card.CreatedAt = createdAt
	card.LastReviewedAt = createdAt
	require.NoError(t, f.db.Stores().Cards.Create(context.Background(), card))
	return card
}

func (f *fixture) learned(t *testing.T, word string, lastReviewed time.Time, score float64) *domain.Card {
	t.Helper()
	ctx := context.Background()
	card := f.addCard(t, word, lastReviewed)
	_, err := f.db.Stores().Cards.MarkLearned(ctx, f.owner, []uuid.UUID{card.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Stores().Cards.UpdateMastery(ctx, f.owner, card.ID, score, lastReviewed))
	return card
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *domain.Card {
	t.Helper()
	card, err := f.db.Stores().Cards.GetByID(context.Background(), f.owner, id)
	require.NoError(t, err)
	return card
}

func TestStartLearningSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.scheduler.StartLearningSession(ctx, f.owner, f.deck.ID, 0)
	assert.ErrorIs(t, err, ErrNoCardsToLearn)

	var ids []uuid.UUID
	for i, w := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		ids = append(ids, f.addCard(t, w, baseTime.Add(time.Duration(i)*time.Second)).ID)
	}

	cards, err := f.scheduler.StartLearningSession(ctx, f.owner, f.deck.ID, 0)
	require.NoError(t, err)
	require.Len(t, cards, 5, "default session size")
	assert.Equal(t, ids[0], cards[0].ID)

	cards, err = f.scheduler.StartLearningSession(ctx, f.owner, f.deck.ID, 3)
	require.NoError(t, err)
	assert.Len(t, cards, 3)

	cards, err = f.scheduler.StartLearningSession(ctx, f.owner, f.deck.ID, 100)
	require.NoError(t, err)
	assert.Len(t, cards, 7, "capped at max but only seven exist")

	_, err = f.scheduler.StartLearningSession(ctx, uuid.New(), f.deck.ID, 3)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestFinishLearningSession_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a := f.addCard(t, "a", baseTime)
	b := f.addCard(t, "b", baseTime.Add(time.Second))

	changed, err := f.scheduler.FinishLearningSession(ctx, f.owner, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	changed, err = f.scheduler.FinishLearningSession(ctx, f.owner, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	assert.False(t, f.reload(t, a.ID).IsNew)
	assert.Equal(t, 0.0, f.reload(t, a.ID).MasteryScore)

	changed, err = f.scheduler.FinishLearningSession(ctx, uuid.New(), []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Zero(t, changed)

	_, err = f.scheduler.StartLearningSession(ctx, f.owner, f.deck.ID, 0)
	assert.ErrorIs(t, err, ErrNoCardsToLearn)
}

func TestStartReviewSession_Eligibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.addCard(t, "new", baseTime.Add(-time.Hour))
	due := f.learned(t, "due", baseTime.Add(-2*time.Minute), 40)
	f.learned(t, "recent", baseTime.Add(-30*time.Second), 40)
	mastered := f.learned(t, "mastered", baseTime.Add(-time.Hour), 100)

	cards, err := f.scheduler.StartReviewSession(ctx, f.owner, f.deck.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, due.ID, cards[0].ID)

	all, err := f.scheduler.StartReviewAllCardsSession(ctx, f.owner, f.deck.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	var ids []uuid.UUID
	for _, c := range all {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, mastered.ID)
}

func TestStartReviewSession_Empty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addCard(t, "new", baseTime)

	_, err := f.scheduler.StartReviewSession(ctx, f.owner, f.deck.ID)
	assert.ErrorIs(t, err, ErrNoCardsToReview)

	_, err = f.scheduler.StartReviewAllCardsSession(ctx, f.owner, f.deck.ID)
	assert.ErrorIs(t, err, ErrNoCardsToReview)

	_, err = f.scheduler.StartReviewSession(ctx, f.owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestFinishReviewCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		score        float64
		lastReviewed time.Duration
		answer       Answer
		wantScore    float64
		wantStamped  bool
	}{
		{
			name:         "correct recall when due adds full weight",
			score:        0,
			lastReviewed: -2 * time.Minute,
			answer:       Answer{IsCorrect: true, Strategy: domain.StrategyRecallIt},
			wantScore:    3,
			wantStamped:  true,
		},
		{
			name:         "correct answer before due is dampened",
			score:        10,
			lastReviewed: -10 * time.Second,
			answer:       Answer{IsCorrect: true, Strategy: domain.StrategyRecallIt},
			wantScore:    10.6,
			wantStamped:  true,
		},
		{
			name:         "score is clamped at the ceiling",
			score:        98,
			lastReviewed: -time.Hour,
			answer:       Answer{IsCorrect: true, Strategy: domain.StrategyTypeIt},
			wantScore:    100,
			wantStamped:  true,
		},
		{
			name:         "incorrect answer is clamped at zero",
			score:        0.5,
			lastReviewed: -time.Hour,
			answer:       Answer{IsCorrect: false, Strategy: domain.StrategyPairIt},
			wantScore:    0,
			wantStamped:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t)
			last := baseTime.Add(tc.lastReviewed)
			card := f.learned(t, "word", last, tc.score)

			updated, err := f.scheduler.FinishReviewCard(ctx, f.owner, card.ID, tc.answer)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantScore, updated.MasteryScore, 1e-9)

			stored := f.reload(t, card.ID)
			assert.InDelta(t, tc.wantScore, stored.MasteryScore, 1e-9)
			if tc.wantStamped {
				assert.True(t, stored.LastReviewedAt.Equal(baseTime))
			} else {
				assert.True(t, stored.LastReviewedAt.Equal(last))
			}
		})
	}
}

func TestFinishReviewCard_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	fresh := f.addCard(t, "fresh", baseTime)
	learned := f.learned(t, "learned", baseTime.Add(-time.Hour), 10)

	_, err := f.scheduler.FinishReviewCard(ctx, f.owner, learned.ID, Answer{IsCorrect: true, Strategy: "spell_it"})
	assert.ErrorIs(t, err, domain.ErrUnknownStrategy)
	assert.Equal(t, 10.0, f.reload(t, learned.ID).MasteryScore)

	_, err = f.scheduler.FinishReviewCard(ctx, uuid.New(), learned.ID, Answer{IsCorrect: true, Strategy: domain.StrategyPairIt})
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	_, err = f.scheduler.FinishReviewCard(ctx, f.owner, fresh.ID, Answer{IsCorrect: true, Strategy: domain.StrategyPairIt})
	assert.ErrorIs(t, err, mastery.ErrCardNotLearned)
	assert.True(t, f.reload(t, fresh.ID).IsNew)
}

func TestFinishReviewCard_ConcurrentAnswersAllApply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	card := f.learned(t, "word", baseTime.Add(-time.Hour), 50)

	const answers = 8
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < answers; i++ {
		g.Go(func() error {
			_, err := f.scheduler.FinishReviewCard(gctx, f.owner, card.ID, Answer{IsCorrect: false, Strategy: domain.StrategyPairIt})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.InDelta(t, 50-answers*0.7, f.reload(t, card.ID).MasteryScore, 1e-9)
}

func TestReviewScenario_ReachesMastery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	card := f.addCard(t, "word", baseTime)

	_, err := f.scheduler.FinishLearningSession(ctx, f.owner, []uuid.UUID{card.ID})
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		f.clock = f.clock.Add(2 * time.Minute)
		_, err := f.scheduler.FinishReviewCard(ctx, f.owner, card.ID, Answer{IsCorrect: true, Strategy: domain.StrategyTypeIt})
		require.NoError(t, err)
	}

	assert.Equal(t, domain.MaxMasteryScore, f.reload(t, card.ID).MasteryScore)

	f.clock = f.clock.Add(time.Hour)
	_, err = f.scheduler.StartReviewSession(ctx, f.owner, f.deck.ID)
	assert.ErrorIs(t, err, ErrNoCardsToReview, "mastered cards leave the review pool")
}
