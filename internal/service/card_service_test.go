package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardService_CreateCardBindsAudio(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	deck := h.deck(t, "Basics", nil)

	card := h.card(t, deck, "house", "Haus")

	female := asset.Request{Text: "Haus", LanguageCode: "de-DE", Gender: domain.VoiceGenderFemale}
	male := asset.Request{Text: "Haus", LanguageCode: "de-DE", Gender: domain.VoiceGenderMale}
	assert.Equal(t, []string{h.assets.Ref(female), h.assets.Ref(male)}, card.SoundURLs)

	stored, err := h.cards.GetCard(ctx, h.owner, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.SoundURLs, stored.SoundURLs)
	assert.True(t, stored.IsNew)
	assert.Equal(t, 2, h.blobs.count())

	// Same text again is a cache hit.
	h.card(t, deck, "home", "Haus")
	assert.Equal(t, int32(2), h.synth.calls.Load())
}

func TestCardService_CreateCardDegradesOnSynthesisFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	deck := h.deck(t, "Basics", nil)
	h.synth.failFor(domain.VoiceGenderMale)

	card := h.card(t, deck, "house", "Haus")
	require.Len(t, card.SoundURLs, 1)
	assert.True(t, strings.HasPrefix(card.SoundURLs[0], "public/tts/"))

	stored, err := h.cards.GetCard(ctx, h.owner, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.SoundURLs, stored.SoundURLs)
}

func TestCardService_CreateCardValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	deck := h.deck(t, "Basics", nil)

	_, err := h.cards.CreateCard(ctx, h.owner, uuid.New(), domain.CardText{
		TextInKnownLanguage: "a", TextInLearningLanguage: "b",
	})
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	_, err = h.cards.CreateCard(ctx, uuid.New(), deck.ID, domain.CardText{
		TextInKnownLanguage: "a", TextInLearningLanguage: "b",
	})
	assert.ErrorIs(t, err, store.ErrDeckNotFound, "deck of another owner")

	_, err = h.cards.CreateCard(ctx, h.owner, deck.ID, domain.CardText{
		TextInKnownLanguage: "a", TextInLearningLanguage: strings.Repeat("b", 101),
	})
	assert.ErrorIs(t, err, domain.ErrTooLong)
	assert.Zero(t, h.synth.calls.Load())
}

func TestCardService_UpdateCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	deck := h.deck(t, "Basics", nil)
	card := h.card(t, deck, "house", "Haus")
	oldRefs := card.SoundURLs

	t.Run("known text only keeps audio", func(t *testing.T) {
		calls := h.synth.calls.Load()
		updated, err := h.cards.UpdateCard(ctx, h.owner, card.ID, domain.CardText{
			TextInKnownLanguage:    "building",
			TextInLearningLanguage: "Haus",
			CEFRLevel:              domain.CEFRLevelA1,
		})
		require.NoError(t, err)
		assert.Equal(t, "building", updated.TextInKnownLanguage)
		assert.Equal(t, domain.CEFRLevelA1, updated.CEFRLevel)
		assert.Equal(t, oldRefs, updated.SoundURLs)
		assert.Equal(t, calls, h.synth.calls.Load())
	})

	t.Run("learning text regenerates and releases", func(t *testing.T) {
		updated, err := h.cards.UpdateCard(ctx, h.owner, card.ID, domain.CardText{
			TextInKnownLanguage:    "building",
			TextInLearningLanguage: "Gebäude",
		})
		require.NoError(t, err)
		require.Len(t, updated.SoundURLs, 2)
		assert.NotEqual(t, oldRefs, updated.SoundURLs)

		stored, err := h.cards.GetCard(ctx, h.owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.SoundURLs, stored.SoundURLs)

		assert.Equal(t, 2, h.blobs.count(), "old audio is released")
		for _, ref := range oldRefs {
			exists, err := h.blobs.Exists(ctx, ref[strings.LastIndex(ref, "/")+1:])
			require.NoError(t, err)
			assert.False(t, exists)
		}
	})

	t.Run("invalid text leaves card untouched", func(t *testing.T) {
		_, err := h.cards.UpdateCard(ctx, h.owner, card.ID, domain.CardText{
			TextInKnownLanguage: "", TextInLearningLanguage: "x",
		})
		assert.ErrorIs(t, err, domain.ErrEmptyContent)

		stored, err := h.cards.GetCard(ctx, h.owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gebäude", stored.TextInLearningLanguage)
	})

	t.Run("unknown card", func(t *testing.T) {
		_, err := h.cards.UpdateCard(ctx, h.owner, uuid.New(), domain.CardText{
			TextInKnownLanguage: "a", TextInLearningLanguage: "b",
		})
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardService_DeleteCardSharedAudio(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	deck := h.deck(t, "Basics", nil)

	first := h.card(t, deck, "house", "Haus")
	second := h.card(t, deck, "home", "Haus")
	require.Equal(t, first.SoundURLs, second.SoundURLs)

	require.NoError(t, h.cards.DeleteCard(ctx, h.owner, first.ID))
	assert.Equal(t, 2, h.blobs.count(), "still referenced by the second card")

	require.NoError(t, h.cards.DeleteCard(ctx, h.owner, second.ID))
	assert.Zero(t, h.blobs.count())

	assert.ErrorIs(t, h.cards.DeleteCard(ctx, h.owner, second.ID), store.ErrCardNotFound)
}
