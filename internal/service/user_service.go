package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// UserService provides user listing.
type UserService interface {
	// List returns every user's public projection, newest first.
	List(ctx context.Context) ([]domain.PublicUser, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userStore store.UserStore, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		logger:    logger.With("component", "user_service"),
	}
}

// List implements UserService.List.
func (s *UserServiceImpl) List(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.userStore.ListPublic(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	s.logger.Debug("listed users", "count", len(users))
	return users, nil
}
