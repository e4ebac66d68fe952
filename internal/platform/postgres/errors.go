package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/wordeck-api/internal/store"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// constraintErrors translates named constraints from the migrations into the
// store sentinel a caller can act on. Unlisted constraints fall back to the
// generic mapping by SQLSTATE.
var constraintErrors = map[string]error{
	"uq_folders_owner_parent_name":      store.ErrFolderNameExists,
	"uq_decks_owner_folder_name":        store.ErrDeckNameExists,
	"folders_parent_id_fkey":            store.ErrFolderNotFound,
	"decks_folder_id_fkey":              store.ErrFolderNotFound,
	"decks_known_language_code_fkey":    store.ErrLanguageNotFound,
	"decks_learning_language_code_fkey": store.ErrLanguageNotFound,
	"cards_deck_id_fkey":                store.ErrDeckNotFound,
}

// MapError maps a database error to a store error, keeping the original
// message in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if target, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return fmt.Errorf("%w: %v", target, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode, checkViolationCode:
		return fmt.Errorf("%w: %s violated: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// MapUniqueViolation maps any unique violation to nameTaken, regardless of
// which index reported it. Other errors go through MapError.
func MapUniqueViolation(err error, nameTaken error) error {
	if !IsUniqueViolation(err) {
		return MapError(err)
	}
	if nameTaken == nil {
		nameTaken = store.ErrDuplicate
	}
	return fmt.Errorf("%w: %v", nameTaken, err)
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE scoped by
// owner matched no row, which covers both missing and foreign rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("no result to check")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}
