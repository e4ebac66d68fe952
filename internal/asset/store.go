package asset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config tunes how a Store talks to its synthesizer.
type Config struct {
	// PublicPrefix is prepended to asset names to form card references.
	PublicPrefix string
	// MaxConcurrent bounds in-flight synthesis calls.
	MaxConcurrent int
	// RequestsPerSecond and Burst rate limit synthesis calls. A non-positive
	// rate disables limiting.
	RequestsPerSecond float64
	Burst             int
	// Timeout bounds a single synthesis call. Zero means no extra timeout.
	Timeout time.Duration
}

// Store is the reference-aware asset cache.
type Store struct {
	blobs   Blobs
	synth   Synthesizer
	refs    ReferenceCounter
	prefix  string
	timeout time.Duration
	locks   *keyedMutex
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewStore wires a Store. If logger is nil, a default logger will be used.
func NewStore(blobs Blobs, synth Synthesizer, refs ReferenceCounter, cfg Config, logger *slog.Logger) (*Store, error) {
	if blobs == nil {
		return nil, domain.NewValidationError("blobs", "cannot be nil", domain.ErrValidation)
	}
	if synth == nil {
		return nil, domain.NewValidationError("synth", "cannot be nil", domain.ErrValidation)
	}
	if refs == nil {
		return nil, domain.NewValidationError("refs", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Store{
		blobs:   blobs,
		synth:   synth,
		refs:    refs,
		prefix:  strings.Trim(cfg.PublicPrefix, "/"),
		timeout: cfg.Timeout,
		locks:   newKeyedMutex(),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		limiter: limiter,
		logger:  logger.With(slog.String("component", "asset_store")),
	}, nil
}

// Hash returns the content address of req.
func Hash(req Request) string {
	gender := req.Gender
	if gender == "" {
		gender = domain.VoiceGenderFemale
	}
	sum := sha256.Sum256([]byte(req.Text + "-" + req.LanguageCode + "-" + string(gender)))
	return hex.EncodeToString(sum[:])
}

// Ref returns the reference a card stores for req.
func (s *Store) Ref(req Request) string {
	return s.refForName(Hash(req) + "." + s.synth.Format().Extension)
}

func (s *Store) refForName(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Resolve returns the reference for req, synthesizing and storing the audio
// only if no artifact with the same hash exists yet.
func (s *Store) Resolve(ctx context.Context, req Request) (string, error) {
	unlock := s.locks.Lock(Hash(req))
	defer unlock()
	return s.resolveLocked(ctx, req)
}

func (s *Store) resolveLocked(ctx context.Context, req Request) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	format := s.synth.Format()
	hash := Hash(req)
	name := hash + "." + format.Extension
	ref := s.refForName(name)

	exists, err := s.blobs.Exists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to check asset %s: %w", name, err)
	}
	if exists {
		log.Debug("asset cache hit", slog.String("asset", name))
		return ref, nil
	}

	data, err := s.synthesize(ctx, req)
	if err != nil {
		return "", err
	}

	if err := s.blobs.Put(ctx, name, data, format.ContentType); err != nil {
		return "", fmt.Errorf("failed to store asset %s: %w", name, err)
	}

	log.Info("asset synthesized",
		slog.String("asset", name),
		slog.String("language_code", req.LanguageCode),
		slog.String("gender", string(req.Gender)),
		slog.Int("bytes", len(data)))
	return ref, nil
}

func (s *Store) synthesize(ctx context.Context, req Request) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	data, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSynthesisUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty audio", ErrSynthesisFailed)
	}
	return data, nil
}

// Bind resolves every request in parallel and hands the resulting references,
// in request order, to persist. The hashes stay locked until persist returns,
// so no concurrent Release can delete an artifact before the card that needs
// it is committed. A request whose synthesis fails is logged and left out.
//
// If persist fails, the references are released again and its error is returned.
func (s *Store) Bind(
	ctx context.Context,
	reqs []Request,
	persist func(ctx context.Context, refs []string) error,
) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hashes := make([]string, len(reqs))
	for i, req := range reqs {
		hashes[i] = Hash(req)
	}
	unlock := s.locks.LockAll(hashes)
	defer unlock()

	resolved := make([]string, len(reqs))
	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			ref, err := s.resolveLocked(ctx, req)
			if err != nil {
				log.Warn("audio unavailable for card text",
					slog.String("error", err.Error()),
					slog.String("language_code", req.LanguageCode),
					slog.String("gender", string(req.Gender)))
				return nil
			}
			resolved[i] = ref
			return nil
		})
	}
	_ = g.Wait()

	refs := make([]string, 0, len(resolved))
	for _, ref := range resolved {
		if ref != "" {
			refs = append(refs, ref)
		}
	}

	if persist != nil {
		if err := persist(ctx, refs); err != nil {
			if relErr := s.releaseLocked(ctx, refs); relErr != nil {
				log.Warn("failed to release unbound assets", slog.String("error", relErr.Error()))
			}
			return nil, err
		}
	}

	return refs, nil
}

// Release deletes each referenced artifact that no card lists anymore.
// Callers must commit the removal of the references before calling Release.
// Failures for individual references are joined; the remaining references are
// still processed.
func (s *Store) Release(ctx context.Context, refs []string) error {
	var errs []error
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}

		hash, err := hashFromRef(ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		unlock := s.locks.Lock(hash)
		err = s.releaseOne(ctx, ref)
		unlock()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) releaseLocked(ctx context.Context, refs []string) error {
	var errs []error
	for _, ref := range refs {
		if err := s.releaseOne(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) releaseOne(ctx context.Context, ref string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	count, err := s.refs.CountSoundReferences(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to count references to %s: %w", ref, err)
	}
	if count > 0 {
		log.Debug("asset still referenced",
			slog.String("ref", ref),
			slog.Int("references", count))
		return nil
	}

	if err := s.blobs.Delete(ctx, path.Base(ref)); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", ref, err)
	}
	log.Info("asset released", slog.String("ref", ref))
	return nil
}

// RequestsForCard builds one request per voice gender for the learning text
// of a card in language lang.
func RequestsForCard(text string, lang *domain.Language) []Request {
	genders := domain.VoiceGenders()
	reqs := make([]Request, 0, len(genders))
	for _, g := range genders {
		reqs = append(reqs, Request{
			Text:         text,
			LanguageCode: lang.Code,
			Gender:       g,
			VoiceName:    lang.VoiceName(g),
		})
	}
	return reqs
}

func hashFromRef(ref string) (string, error) {
	name := path.Base(ref)
	hash := strings.TrimSuffix(name, path.Ext(name))
	if len(hash) != sha256.Size*2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return hash, nil
}
