package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockTaskStore is a mock of store.TaskStore interface for use with testify/mock
type TestifyMockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*TestifyMockTaskStore)(nil)

// Create is a mock implementation of store.TaskStore.Create
func (m *TestifyMockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// GetByID is a mock implementation of store.TaskStore.GetByID
func (m *TestifyMockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// List is a mock implementation of store.TaskStore.List
func (m *TestifyMockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, filter)
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

// Count is a mock implementation of store.TaskStore.Count
func (m *TestifyMockTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

// Update is a mock implementation of store.TaskStore.Update
func (m *TestifyMockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *TestifyMockTaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// WithTx is a mock implementation of store.TaskStore.WithTx.
// Without an expectation it returns the mock itself.
func (m *TestifyMockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	for _, call := range m.ExpectedCalls {
		if call.Method == "WithTx" {
			args := m.Called(tx)
			if ret, ok := args.Get(0).(store.TaskStore); ok {
				return ret
			}
			return m
		}
	}
	return m
}
