package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/kanban-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "update_task")
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// Not-found errors from the store are returned as ErrTaskNotFound without wrapping.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
