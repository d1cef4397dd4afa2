package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/kanban-api/internal/domain"
)

// TaskFilter narrows List and Count. A nil Status matches every task.
type TaskFilter struct {
	Status *domain.Status
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create inserts the task and fills in its store-assigned ID.
	// Returns ErrInvalidEntity if the task fails domain validation.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns tasks matching the filter, newest first by creation time
	// with ties kept in insertion order.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Count returns the number of tasks matching the filter.
	Count(ctx context.Context, filter TaskFilter) (int, error)

	// Update persists title, description, status and updated_at of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID and reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
