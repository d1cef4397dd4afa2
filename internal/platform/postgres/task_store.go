package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

const taskColumns = `id, title, description, status, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
// The store assigns the ID; it is written back into task.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		nullString(task.Description),
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	return task, nil
}

// List implements store.TaskStore.List.
// Tasks are ordered newest first; equal creation times keep insertion order.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := filterClause(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "scan failed", MapError(err))
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "row iteration failed", MapError(err))
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Count implements store.TaskStore.Count.
func (s *PostgresTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := filterClause(filter)
	query := `SELECT COUNT(*) FROM tasks` + where

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return 0, store.NewStoreError("task", "count", "query failed", MapError(err))
	}
	return count, nil
}

// Update implements store.TaskStore.Update.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		nullString(task.Description),
		string(task.Status),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "update", "query failed",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err)))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return store.NewStoreError("task", "update", "rows affected unavailable",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, err))
	}
	if n == 0 {
		log.Debug("task not found for update", slog.Int64("task_id", task.ID))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete.
// Deleting a task that does not exist is not an error; it reports false.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, store.NewStoreError("task", "delete", "query failed",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err)))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, store.NewStoreError("task", "delete", "rows affected unavailable",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, err))
	}

	log.Info("task delete executed",
		slog.Int64("task_id", id),
		slog.Bool("deleted", n > 0))
	return n > 0, nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	task.Status = domain.Status(status)
	task.CreatedAt = domain.Timestamp(task.CreatedAt)
	task.UpdatedAt = domain.Timestamp(task.UpdatedAt)
	return &task, nil
}

// filterClause returns the WHERE clause and its arguments for filter.
func filterClause(filter store.TaskFilter) (string, []any) {
	if filter.Status == nil {
		return "", nil
	}
	return ` WHERE status = $1`, []any{string(*filter.Status)}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
