// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in the internal/store package, plus the embedded goose
// migrations (see the migrations subpackage) that create the schema.
//
// Every query is scoped by owner ID. Sibling name uniqueness for folders and
// decks is backed by unique indexes, and violations are mapped to
// store.ErrFolderNameExists and store.ErrDeckNameExists.
package postgres
