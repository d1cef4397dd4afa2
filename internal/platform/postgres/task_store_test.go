package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskRowColumns = []string{"id", "title", "description", "status", "created_at", "updated_at"}

func newMockTaskStore(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresTaskStore(db, nil), mock
}

func TestPostgresTaskStore_Create(t *testing.T) {
	s, mock := newMockTaskStore(t)
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	task, err := domain.NewTask("Write docs", domain.StringPtr("README"), "", now)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("Write docs", "README", "todo", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	require.NoError(t, s.Create(context.Background(), task))
	assert.Equal(t, int64(42), task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_CreateNullDescription(t *testing.T) {
	s, mock := newMockTaskStore(t)
	now := time.Now().UTC()

	task, err := domain.NewTask("No description", nil, domain.StatusDone, now)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("No description", nil, "done", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	require.NoError(t, s.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_CreateInvalid(t *testing.T) {
	s, mock := newMockTaskStore(t)

	err := s.Create(context.Background(), &domain.Task{Title: "", Status: domain.StatusTodo})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query should be issued")
}

func TestPostgresTaskStore_CreateCheckViolation(t *testing.T) {
	s, mock := newMockTaskStore(t)

	mock.ExpectQuery("INSERT INTO tasks").
		WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "tasks_status_check"})

	task := &domain.Task{Title: "x", Status: domain.StatusTodo}
	err := s.Create(context.Background(), task)

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	s, mock := newMockTaskStore(t)
	created := time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(int64(7), "Ship it", nil, "in-progress", created, updated))

	task, err := s.GetByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), task.ID)
	assert.Equal(t, "Ship it", task.Title)
	assert.Nil(t, task.Description)
	assert.Equal(t, domain.StatusInProgress, task.Status)
	assert.Equal(t, created, task.CreatedAt)
	assert.Equal(t, updated, task.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_GetByIDNotFound(t *testing.T) {
	s, mock := newMockTaskStore(t)

	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = \\$1").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	task, err := s.GetByID(context.Background(), 999)

	assert.Nil(t, task)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestPostgresTaskStore_List(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		now := time.Now().UTC().Truncate(time.Microsecond)

		mock.ExpectQuery("SELECT (.+) FROM tasks ORDER BY created_at DESC, id ASC").
			WillReturnRows(sqlmock.NewRows(taskRowColumns).
				AddRow(int64(2), "Newer", "desc", "todo", now, now).
				AddRow(int64(1), "Older", nil, "done", now.Add(-time.Hour), now))

		tasks, err := s.List(context.Background(), store.TaskFilter{})

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Newer", tasks[0].Title)
		require.NotNil(t, tasks[0].Description)
		assert.Equal(t, "desc", *tasks[0].Description)
		assert.Equal(t, "Older", tasks[1].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status filter", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		status := domain.StatusDone

		mock.ExpectQuery("SELECT (.+) FROM tasks WHERE status = \\$1 ORDER BY created_at DESC, id ASC").
			WithArgs("done").
			WillReturnRows(sqlmock.NewRows(taskRowColumns))

		tasks, err := s.List(context.Background(), store.TaskFilter{Status: &status})

		require.NoError(t, err)
		assert.NotNil(t, tasks, "an empty result is an empty slice")
		assert.Empty(t, tasks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

		_, err := s.List(context.Background(), store.TaskFilter{})

		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "task", storeErr.Entity)
		assert.Equal(t, "list", storeErr.Operation)
	})
}

func TestPostgresTaskStore_Count(t *testing.T) {
	s, mock := newMockTaskStore(t)
	status := domain.StatusTodo

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tasks WHERE status = \\$1").
		WithArgs("todo").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.Count(context.Background(), store.TaskFilter{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Update(t *testing.T) {
	now := time.Now().UTC()
	task := &domain.Task{ID: 5, Title: "Renamed", Status: domain.StatusDone, CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec("UPDATE tasks").
			WithArgs("Renamed", nil, "done", now, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Update(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec("UPDATE tasks").WillReturnError(errors.New("connection reset"))

		err := s.Update(context.Background(), task)

		assert.ErrorIs(t, err, store.ErrUpdateFailed)
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "update", storeErr.Operation)
	})

	t.Run("check violation", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec("UPDATE tasks").
			WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "tasks_status_check"})

		err := s.Update(context.Background(), task)

		assert.ErrorIs(t, err, store.ErrUpdateFailed)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("invalid status", func(t *testing.T) {
		s, _ := newMockTaskStore(t)
		bad := task.Clone()
		bad.Status = "archived"

		assert.ErrorIs(t, s.Update(context.Background(), bad), store.ErrInvalidEntity)
	})
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	s, mock := newMockTaskStore(t)

	mock.ExpectExec("DELETE FROM tasks WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tasks WHERE id = \\$1").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := s.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting a missing task reports false without error")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	deleted, err := s.WithTx(tx).Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_DeleteQueryError(t *testing.T) {
	s, mock := newMockTaskStore(t)
	mock.ExpectExec("DELETE FROM tasks").WillReturnError(errors.New("connection reset"))

	deleted, err := s.Delete(context.Background(), 7)

	assert.False(t, deleted)
	assert.ErrorIs(t, err, store.ErrDeleteFailed)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "task", storeErr.Entity)
	assert.Equal(t, "delete", storeErr.Operation)
}
