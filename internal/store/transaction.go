package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/wordeck-api/internal/platform/logger"
)

// TxFn is the unit of work run by RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction on db and commits when fn returns
// nil. An error from fn is returned as is after rollback, joined with the
// rollback error if that fails too. A panic in fn rolls back and re-panics.
// Begin and commit failures wrap ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	log := logger.FromContext(ctx)
	started := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to roll back transaction", slog.String("error", rbErr.Error()))
			if p == nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
		if p != nil {
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
		log.Debug("transaction rolled back",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)))
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		committed = true
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}
	committed = true

	log.Debug("transaction committed", slog.Duration("elapsed", time.Since(started)))
	return nil
}
