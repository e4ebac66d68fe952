package asset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
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
	b.deleted = append(b.deleted, name)
	return nil
}

func (b *memBlobs) has(name string) bool {
	ok, _ := b.Exists(context.Background(), name)
	return ok
}

type mockSynth struct {
	mock.Mock
}

func (m *mockSynth) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	args := m.Called(ctx, req)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockSynth) Format() Format {
	return Format{Extension: "wav", ContentType: "audio/wav"}
}

// countingRefs reports references from a mutable set of live card sound lists.
type countingRefs struct {
	mu    sync.Mutex
	cards map[string][]string
}

func newCountingRefs() *countingRefs {
	return &countingRefs{cards: make(map[string][]string)}
}

func (c *countingRefs) set(card string, refs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if refs == nil {
		delete(c.cards, card)
		return
	}
	c.cards[card] = refs
}

func (c *countingRefs) CountSoundReferences(_ context.Context, ref string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, refs := range c.cards {
		for _, r := range refs {
			if r == ref {
				n++
				break
			}
		}
	}
	return n, nil
}

func newTestStore(t *testing.T, synth Synthesizer) (*Store, *memBlobs, *countingRefs) {
	t.Helper()
	blobs := newMemBlobs()
	refs := newCountingRefs()
	s, err := NewStore(blobs, synth, refs, Config{PublicPrefix: "/public/tts/", MaxConcurrent: 2}, nil)
	require.NoError(t, err)
	return s, blobs, refs
}

func germanHouse(gender domain.VoiceGender) Request {
	return Request{Text: "Haus", LanguageCode: "de-DE", Gender: gender, VoiceName: "Kore"}
}

func TestHash_IsContentAddressed(t *testing.T) {
	t.Parallel()

	a := Hash(germanHouse(domain.VoiceGenderFemale))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Hash(Request{Text: "Haus", LanguageCode: "de-DE", Gender: domain.VoiceGenderFemale, VoiceName: "other"}),
		"voice name does not change the address")
	assert.Equal(t, a, Hash(Request{Text: "Haus", LanguageCode: "de-DE"}), "gender defaults to female")
	assert.NotEqual(t, a, Hash(germanHouse(domain.VoiceGenderMale)))
	assert.NotEqual(t, a, Hash(Request{Text: "Haus", LanguageCode: "nl-NL", Gender: domain.VoiceGenderFemale}))
}

func TestResolve_CacheHitSkipsSynthesis(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, germanHouse(domain.VoiceGenderFemale)).Return([]byte("RIFF"), nil).Once()

	s, blobs, _ := newTestStore(t, synth)

	ref, err := s.Resolve(ctx, germanHouse(domain.VoiceGenderFemale))
	require.NoError(t, err)
	assert.Equal(t, "public/tts/"+Hash(germanHouse(domain.VoiceGenderFemale))+".wav", ref)
	assert.Equal(t, s.Ref(germanHouse(domain.VoiceGenderFemale)), ref)
	assert.True(t, blobs.has(Hash(germanHouse(domain.VoiceGenderFemale))+".wav"))

	again, err := s.Resolve(ctx, germanHouse(domain.VoiceGenderFemale))
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	synth.AssertNumberOfCalls(t, "Synthesize", 1)
}

func TestResolve_SynthesisFailure(t *testing.T) {
	t.Parallel()
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	s, blobs, _ := newTestStore(t, synth)

	_, err := s.Resolve(context.Background(), germanHouse(domain.VoiceGenderFemale))
	assert.ErrorIs(t, err, ErrSynthesisFailed)
	assert.Empty(t, blobs.objects)
}

func TestBind_DegradesOnPartialFailure(t *testing.T) {
	t.Parallel()
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, germanHouse(domain.VoiceGenderFemale)).Return([]byte("f"), nil)
	synth.On("Synthesize", mock.Anything, germanHouse(domain.VoiceGenderMale)).Return(nil, errors.New("upstream 500"))

	s, _, _ := newTestStore(t, synth)

	var persisted []string
	refs, err := s.Bind(context.Background(),
		[]Request{germanHouse(domain.VoiceGenderFemale), germanHouse(domain.VoiceGenderMale)},
		func(_ context.Context, refs []string) error {
			persisted = refs
			return nil
		})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, s.Ref(germanHouse(domain.VoiceGenderFemale)), refs[0])
	assert.Equal(t, refs, persisted)
}

func TestBind_KeepsRequestOrder(t *testing.T) {
	t.Parallel()
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, germanHouse(domain.VoiceGenderFemale)).
		After(20*time.Millisecond).Return([]byte("f"), nil)
	synth.On("Synthesize", mock.Anything, germanHouse(domain.VoiceGenderMale)).Return([]byte("m"), nil)

	s, _, _ := newTestStore(t, synth)

	lang := &domain.Language{Code: "de-DE", FemaleVoiceName: "Kore", MaleVoiceName: "Kore"}
	refs, err := s.Bind(context.Background(), RequestsForCard("Haus", lang), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		s.Ref(germanHouse(domain.VoiceGenderFemale)),
		s.Ref(germanHouse(domain.VoiceGenderMale)),
	}, refs)
}

func TestBind_PersistFailureReleasesNewAssets(t *testing.T) {
	t.Parallel()
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, mock.Anything).Return([]byte("x"), nil)

	s, blobs, _ := newTestStore(t, synth)

	errWrite := errors.New("write failed")
	_, err := s.Bind(context.Background(),
		[]Request{germanHouse(domain.VoiceGenderFemale)},
		func(context.Context, []string) error { return errWrite })
	require.ErrorIs(t, err, errWrite)
	assert.Empty(t, blobs.objects)
}

func TestRelease_SharedAsset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, mock.Anything).Return([]byte("x"), nil).Once()

	s, blobs, refs := newTestStore(t, synth)
	ref, err := s.Resolve(ctx, germanHouse(domain.VoiceGenderFemale))
	require.NoError(t, err)
	name := Hash(germanHouse(domain.VoiceGenderFemale)) + ".wav"

	refs.set("card-1", ref)
	refs.set("card-2", ref)

	// card-1 deleted: card-2 still holds the asset.
	refs.set("card-1")
	require.NoError(t, s.Release(ctx, []string{ref}))
	assert.True(t, blobs.has(name))

	// card-2 deleted: nothing references it anymore.
	refs.set("card-2")
	require.NoError(t, s.Release(ctx, []string{ref, ref}))
	assert.False(t, blobs.has(name))
	assert.Equal(t, []string{name}, blobs.deleted)
}

func TestRelease_InvalidRef(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestStore(t, DisabledSynthesizer{})

	err := s.Release(context.Background(), []string{"public/tts/not-a-hash.wav"})
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestDisabledSynthesizer(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestStore(t, DisabledSynthesizer{})

	_, err := s.Resolve(context.Background(), germanHouse(domain.VoiceGenderFemale))
	assert.ErrorIs(t, err, ErrSynthesisUnavailable)

	refs, err := s.Bind(context.Background(), []Request{germanHouse(domain.VoiceGenderFemale)}, nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestNewStore_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, DisabledSynthesizer{}, newCountingRefs(), Config{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewStore(newMemBlobs(), nil, newCountingRefs(), Config{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewStore(newMemBlobs(), DisabledSynthesizer{}, nil, Config{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolve_ConcurrentSameHashSynthesizesOnce(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	synth := &mockSynth{}
	synth.On("Synthesize", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		After(5*time.Millisecond).
		Return([]byte("x"), nil)

	s, _, _ := newTestStore(t, synth)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Resolve(context.Background(), germanHouse(domain.VoiceGenderFemale))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, s.locks.size())
}
