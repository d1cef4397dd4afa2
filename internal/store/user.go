package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/kanban-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// ListPublic returns the public projection of every user, newest first.
	// Credential columns are never read.
	ListPublic(ctx context.Context) ([]domain.PublicUser, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
