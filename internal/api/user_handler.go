package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	if userService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("userService cannot be nil for UserHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		userService: userService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// ListUsers handles GET /api/users requests. Only the public projection of
// each user is serialized.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve users")
		return
	}
	if users == nil {
		users = []domain.PublicUser{}
	}

	shared.RespondWithList(w, r, "Users retrieved successfully", users, len(users))
}
