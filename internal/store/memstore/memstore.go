// Package memstore is an in-process implementation of the store interfaces.
// It backs unit tests and the "memory" database driver. Transactions are
// serialized and implemented by working on a copy of the state that replaces
// the original only on success.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

type state struct {
	cards     map[uuid.UUID]*domain.Card
	decks     map[uuid.UUID]*domain.Deck
	folders   map[uuid.UUID]*domain.Folder
	languages map[string]*domain.Language
}

func newState() *state {
	return &state{
		cards:     make(map[uuid.UUID]*domain.Card),
		decks:     make(map[uuid.UUID]*domain.Deck),
		folders:   make(map[uuid.UUID]*domain.Folder),
		languages: make(map[string]*domain.Language),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, card := range s.cards {
		c.cards[id] = copyCard(card)
	}
	for id, deck := range s.decks {
		c.decks[id] = copyDeck(deck)
	}
	for id, folder := range s.folders {
		c.folders[id] = copyFolder(folder)
	}
	for code, lang := range s.languages {
		l := *lang
		c.languages[code] = &l
	}
	return c
}

// DB holds the whole dataset behind a single mutex.
type DB struct {
	mu     sync.Mutex
	st     *state
	logger *slog.Logger
}

// Ensure DB implements store.Transactor
var _ store.Transactor = (*DB)(nil)

// New creates an empty in-memory database. If logger is nil, a default logger will be used.
func New(logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{
		st:     newState(),
		logger: logger.With(slog.String("component", "memstore")),
	}
}

// SeedLanguages replaces the language catalog.
func (db *DB) SeedLanguages(languages ...*domain.Language) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.languages = make(map[string]*domain.Language, len(languages))
	for _, lang := range languages {
		l := *lang
		db.st.languages[l.Code] = &l
	}
}

// Stores implements store.Transactor.
func (db *DB) Stores() store.Stores {
	return db.storesFor(handle{db: db})
}

// InTx implements store.Transactor.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	log := logger.FromContextOrDefault(ctx, db.logger)

	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.st.clone()
	if err := fn(ctx, db.storesFor(handle{db: db, tx: work})); err != nil {
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	db.st = work
	log.Debug("transaction committed successfully")
	return nil
}

func (db *DB) storesFor(h handle) store.Stores {
	return store.Stores{
		Cards:     &cardStore{h: h},
		Decks:     &deckStore{h: h},
		Folders:   &folderStore{h: h},
		Languages: &languageStore{h: h},
	}
}

// handle routes a store call either to the transaction's working copy or,
// outside a transaction, to the shared state under the lock.
type handle struct {
	db *DB
	tx *state
}

func (h handle) run(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	return fn(h.db.st)
}

func copyCard(c *domain.Card) *domain.Card {
	cp := *c
	cp.SoundURLs = append([]string{}, c.SoundURLs...)
	return &cp
}

func copyDeck(d *domain.Deck) *domain.Deck {
	cp := *d
	if d.FolderID != nil {
		id := *d.FolderID
		cp.FolderID = &id
	}
	return &cp
}

func copyFolder(f *domain.Folder) *domain.Folder {
	cp := *f
	if f.ParentID != nil {
		id := *f.ParentID
		cp.ParentID = &id
	}
	return &cp
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func excluded(id uuid.UUID, excludeID *uuid.UUID) bool {
	return excludeID != nil && *excludeID == id
}
