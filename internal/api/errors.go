package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never leak to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-friendly message for err that carries
// no internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid status provided"

	case errors.Is(err, domain.ErrEmptyTaskTitle):
		return "Task title is required"

	case errors.Is(err, domain.ErrTaskTitleTooLong):
		return fmt.Sprintf("Task title cannot exceed %d characters", domain.MaxTitleLength)

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid task ID"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error envelope for err. An empty message is
// replaced by GetSafeErrorMessage(err). Status errors also carry the list
// of valid statuses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if errors.Is(err, domain.ErrInvalidStatus) {
		opts = append(opts, shared.WithValidStatuses(domain.ValidStatusStrings()))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field, without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
