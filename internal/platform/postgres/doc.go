// Package postgres provides PostgreSQL implementations of the task and user
// stores defined in internal/store, together with the embedded goose
// migrations that create their tables.
package postgres
