// Package store defines the persistence interfaces for tasks and users.
// Implementations live under internal/platform; services depend only on
// these interfaces and on RunInTransaction for multi-step operations.
package store
