package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status"      validate:"omitempty,oneof=todo in-progress done"`
}

// UpdateTaskRequest is the merge-patch body for PATCH and PUT /api/tasks/{id}.
// Absent fields keep their stored values; an explicit null description clears it.
type UpdateTaskRequest = domain.TaskPatch

// TaskResponse is the JSON representation of a task.
type TaskResponse = domain.Task

// UserResponse is the JSON representation of a user.
type UserResponse = domain.PublicUser

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.ErrInvalidID
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
