// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests obtain a migrated database with GetTestDBWithT, which skips the test
// when DATABASE_URL is unset, and isolate their writes with WithTx, which
// always rolls back.
package testdb
