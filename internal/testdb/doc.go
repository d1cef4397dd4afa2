// Package testdb provides helpers for PostgreSQL integration tests: opening
// the test database, applying the embedded migrations, and running each test
// inside a transaction that is always rolled back.
//
// Tests using this package are skipped unless DATABASE_URL or
// KANBAN_TEST_DB_URL is set.
package testdb
