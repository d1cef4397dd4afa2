package mocks

import (
	"context"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	ListFn   func(ctx context.Context, status string) ([]*domain.Task, error)
	CountFn  func(ctx context.Context, status string) (int, error)
	GetFn    func(ctx context.Context, id int64) (*domain.Task, error)
	CreateFn func(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error)
	UpdateFn func(ctx context.Context, existing *domain.Task, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn func(ctx context.Context, task *domain.Task) (bool, error)

	// Default return values
	Task         *domain.Task
	DefaultError error
}

var _ service.TaskService = (*MockTaskService)(nil)

// List implements the TaskService.List method
func (m *MockTaskService) List(ctx context.Context, status string) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, status)
	}
	return []*domain.Task{}, m.DefaultError
}

// Count implements the TaskService.Count method
func (m *MockTaskService) Count(ctx context.Context, status string) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, status)
	}
	return 0, m.DefaultError
}

// Get implements the TaskService.Get method
func (m *MockTaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return m.Task, m.DefaultError
}

// Create implements the TaskService.Create method
func (m *MockTaskService) Create(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, params)
	}
	return m.Task, m.DefaultError
}

// Update implements the TaskService.Update method
func (m *MockTaskService) Update(ctx context.Context, existing *domain.Task, patch domain.TaskPatch) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, existing, patch)
	}
	return m.Task, m.DefaultError
}

// Delete implements the TaskService.Delete method
func (m *MockTaskService) Delete(ctx context.Context, task *domain.Task) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, task)
	}
	return m.DefaultError == nil, m.DefaultError
}

// ValidStatuses implements the TaskService.ValidStatuses method
func (m *MockTaskService) ValidStatuses() []domain.Status {
	return domain.ValidStatuses()
}
