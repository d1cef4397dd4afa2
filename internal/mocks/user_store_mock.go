package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockUserStore is a mock of store.UserStore interface for use with testify/mock
type TestifyMockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*TestifyMockUserStore)(nil)

// Create is a mock implementation of store.UserStore.Create
func (m *TestifyMockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// ListPublic is a mock implementation of store.UserStore.ListPublic
func (m *TestifyMockUserStore) ListPublic(ctx context.Context) ([]domain.PublicUser, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]domain.PublicUser); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx is a mock implementation of store.UserStore.WithTx
func (m *TestifyMockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
