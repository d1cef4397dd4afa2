package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// CreateTaskParams carries the fields accepted when creating a task.
// Nil Description and Status fall back to no description and "todo".
type CreateTaskParams struct {
	Title       string
	Description *string
	Status      *domain.Status
}

// TaskService provides the task collection operations used by the API.
type TaskService interface {
	// List returns tasks newest first. An empty or unknown status means no filter.
	List(ctx context.Context, status string) ([]*domain.Task, error)

	// Count returns the number of tasks with the same filter semantics as List.
	Count(ctx context.Context, status string) (int, error)

	// Get returns a single task or ErrTaskNotFound.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Create persists a new task and returns it with its assigned ID.
	Create(ctx context.Context, params CreateTaskParams) (*domain.Task, error)

	// Update merges patch into existing and returns the task as persisted.
	Update(ctx context.Context, existing *domain.Task, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task and reports whether a row was removed.
	Delete(ctx context.Context, task *domain.Task) (bool, error)

	// ValidStatuses returns the accepted status values in pipeline order.
	ValidStatuses() []domain.Status
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// db is used to open transactions for multi-step operations.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(tasks store.TaskStore, db *sql.DB, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "task store cannot be nil"}
	}
	if db == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		db:     db,
		now:    time.Now,
		logger: logger.With("component", "task_service"),
	}, nil
}

// statusFilter applies the permissive filter policy: anything that is not a
// known status is ignored rather than rejected.
func statusFilter(status string) store.TaskFilter {
	s, err := domain.ParseStatus(status)
	if err != nil {
		return store.TaskFilter{}
	}
	return store.TaskFilter{Status: &s}
}

// List implements TaskService.List.
func (s *taskServiceImpl) List(ctx context.Context, status string) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, statusFilter(status))
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "status", status)
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// Count implements TaskService.Count.
func (s *taskServiceImpl) Count(ctx context.Context, status string) (int, error) {
	count, err := s.tasks.Count(ctx, statusFilter(status))
	if err != nil {
		s.logger.Error("failed to count tasks", "error", err, "status", status)
		return 0, NewTaskServiceError("count_tasks", "failed to count tasks", err)
	}
	return count, nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to get task", "error", err, "task_id", id)
		}
		return nil, NewTaskServiceError("get_task", "failed to get task", err)
	}
	return task, nil
}

// Create implements TaskService.Create.
func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	var status domain.Status
	if params.Status != nil {
		status = *params.Status
	}

	task, err := domain.NewTask(params.Title, params.Description, status, s.now())
	if err != nil {
		s.logger.Warn("rejected task creation", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task", "error", err)
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	s.logger.Info("task created", "task_id", task.ID, "status", task.Status)
	return task, nil
}

// Update implements TaskService.Update.
// The patch is applied to a copy of existing, written, and read back inside
// one transaction so the returned task is exactly what was persisted.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	existing *domain.Task,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		s.logger.Warn("rejected task update", "error", err, "task_id", existing.ID)
		return nil, err
	}

	updated := existing.Clone()
	patch.Apply(updated)
	updated.Touch(s.now())

	var persisted *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)

		if err := txStore.Update(ctx, updated); err != nil {
			return err
		}

		fresh, err := txStore.GetByID(ctx, updated.ID)
		if err != nil {
			return err
		}
		persisted = fresh
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to update task", "error", err, "task_id", existing.ID)
		}
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	s.logger.Info("task updated", "task_id", persisted.ID, "status", persisted.Status)
	return persisted, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, task *domain.Task) (bool, error) {
	deleted, err := s.tasks.Delete(ctx, task.ID)
	if err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", task.ID)
		return false, NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted", "task_id", task.ID, "deleted", deleted)
	return deleted, nil
}

// ValidStatuses implements TaskService.ValidStatuses.
func (s *taskServiceImpl) ValidStatuses() []domain.Status {
	return domain.ValidStatuses()
}
