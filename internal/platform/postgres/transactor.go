package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/wordeck-api/internal/store"
)

// Transactor builds PostgreSQL stores bound either to the connection pool or
// to a single transaction.
type Transactor struct {
	db     *sql.DB
	logger *slog.Logger
	stores store.Stores
}

// Ensure Transactor implements store.Transactor interface
var _ store.Transactor = (*Transactor)(nil)

// NewTransactor creates a Transactor over db. If logger is nil, a default logger will be used.
func NewTransactor(db *sql.DB, logger *slog.Logger) *Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transactor{
		db:     db,
		logger: logger,
		stores: storesFor(db, logger),
	}
}

// Stores returns stores that run each call on the pool.
func (t *Transactor) Stores() store.Stores {
	return t.stores
}

// InTx runs fn with stores bound to a single transaction.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, storesFor(tx, t.logger))
	})
}

func storesFor(db store.Querier, logger *slog.Logger) store.Stores {
	return store.Stores{
		Cards:     NewPostgresCardStore(db, logger),
		Decks:     NewPostgresDeckStore(db, logger),
		Folders:   NewPostgresFolderStore(db, logger),
		Languages: NewPostgresLanguageStore(db, logger),
	}
}
