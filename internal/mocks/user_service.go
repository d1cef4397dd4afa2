package mocks

import (
	"context"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	ListFn func(ctx context.Context) ([]domain.PublicUser, error)

	Users        []domain.PublicUser
	DefaultError error
}

var _ service.UserService = (*MockUserService)(nil)

// List implements the UserService.List method
func (m *MockUserService) List(ctx context.Context) ([]domain.PublicUser, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.Users, m.DefaultError
}
