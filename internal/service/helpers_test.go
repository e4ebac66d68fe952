package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

var errSynthDown = errors.New("synthesizer down")

// fakeSynth renders deterministic bytes and can be told to fail for a gender.
type fakeSynth struct {
	calls    atomic.Int32
	mu       sync.Mutex
	failures map[domain.VoiceGender]bool
}

func (f *fakeSynth) Synthesize(_ context.Context, req asset.Request) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[req.Gender] {
		return nil, errSynthDown
	}
	return []byte(req.Text + "/" + string(req.Gender)), nil
}

func (f *fakeSynth) Format() asset.Format {
	return asset.Format{Extension: "wav", ContentType: "audio/wav"}
}

func (f *fakeSynth) failFor(g domain.VoiceGender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures == nil {
		f.failures = map[domain.VoiceGender]bool{}
	}
	f.failures[g] = true
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memBlobs) Exists(_ context.Context, name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[name]
	return ok, nil
}

func (b *memBlobs) Put(_ context.Context, name string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = data
	return nil
}

func (b *memBlobs) Delete(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, name)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type harness struct {
	db      *memstore.DB
	blobs   *memBlobs
	synth   *fakeSynth
	assets  *asset.Store
	folders FolderService
	decks   DeckService
	cards   CardService
	owner   uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := memstore.New(nil)
	db.SeedLanguages(
		&domain.Language{Code: "en-US", Name: "English", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
		&domain.Language{Code: "de-DE", Name: "German", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	)

	blobs := &memBlobs{objects: map[string][]byte{}}
	synth := &fakeSynth{}
	assets, err := asset.NewStore(blobs, synth, db.Stores().Cards, asset.Config{PublicPrefix: "public/tts"}, nil)
	require.NoError(t, err)

	engine := mastery.NewDefaultEngine()
	limits := domain.DefaultLimits()

	folders, err := NewFolderService(db, assets, engine, limits, domain.DefaultMaxFolderDepth, nil)
	require.NoError(t, err)
	decks, err := NewDeckService(db, assets, engine, limits, nil)
	require.NoError(t, err)
	cards, err := NewCardService(db, assets, limits, nil)
	require.NoError(t, err)

	return &harness{
		db:      db,
		blobs:   blobs,
		synth:   synth,
		assets:  assets,
		folders: folders,
		decks:   decks,
		cards:   cards,
		owner:   uuid.New(),
	}
}

func (h *harness) folder(t *testing.T, name string, parent *domain.Folder) *domain.Folder {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}
	f, err := h.folders.CreateFolder(context.Background(), h.owner, name, parentID)
	require.NoError(t, err)
	return f
}

func (h *harness) deck(t *testing.T, name string, folder *domain.Folder) *domain.Deck {
	t.Helper()
	var folderID *uuid.UUID
	if folder != nil {
		folderID = &folder.ID
	}
	d, err := h.decks.CreateDeck(context.Background(), h.owner, CreateDeckInput{
		Name:                 name,
		FolderID:             folderID,
		KnownLanguageCode:    "en-US",
		LearningLanguageCode: "de-DE",
	})
	require.NoError(t, err)
	return d
}

func (h *harness) card(t *testing.T, deck *domain.Deck, known, learning string) *domain.Card {
	t.Helper()
	c, err := h.cards.CreateCard(context.Background(), h.owner, deck.ID, domain.CardText{
		TextInKnownLanguage:    known,
		TextInLearningLanguage: learning,
	})
	require.NoError(t, err)
	return c
}
