package postgres

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// textArray returns a database/sql scanner that decodes a PostgreSQL text[]
// into dst. A NULL array decodes to an empty slice.
func textArray(dst *[]string) sql.Scanner {
	return &nonNilTextArray{dst: dst, inner: pgtype.NewMap().SQLScanner(dst)}
}

type nonNilTextArray struct {
	dst   *[]string
	inner sql.Scanner
}

func (a *nonNilTextArray) Scan(src any) error {
	if err := a.inner.Scan(src); err != nil {
		return err
	}
	if *a.dst == nil {
		*a.dst = []string{}
	}
	return nil
}

// uuidStrings converts ids for use with an ANY($n::uuid[]) predicate.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// nullableUUID converts an optional ID to a value database/sql can bind.
func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// scanNullableUUID copies a scanned uuid.NullUUID into an optional ID.
func scanNullableUUID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
