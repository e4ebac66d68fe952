// Package store declares the persistence contracts for cards, decks, folders
// and languages, and the Transactor that groups them under one transaction.
// PostgreSQL and in-memory implementations live in platform/postgres and
// store/memstore.
//
// Every read and write is scoped to an owner ID. A record owned by another
// user is reported exactly like a missing one.
package store
