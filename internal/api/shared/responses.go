package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/redact"
)

// Envelope is the body of every API response.
// Data and Count are only present on success; ValidStatuses only on a
// rejected status filter; TraceID only on errors.
type Envelope struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	Data          any      `json:"data,omitempty"`
	Count         *int     `json:"count,omitempty"`
	ValidStatuses []string `json:"valid_statuses,omitempty"`
	TraceID       string   `json:"trace_id,omitempty"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
	validStatuses   []string
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to WARN level
// instead of the default DEBUG level.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// WithValidStatuses attaches the list of accepted statuses to an error response.
func WithValidStatuses(statuses []string) ResponseOption {
	return func(opts *responseOptions) {
		opts.validStatuses = statuses
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithData writes a success envelope carrying data.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	RespondWithJSON(w, r, status, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithList writes a success envelope carrying a collection and its size.
// A nil slice is expected to be replaced by an empty one by the caller.
func RespondWithList(w http.ResponseWriter, r *http.Request, message string, data any, count int) {
	RespondWithJSON(w, r, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Count: &count})
}

// RespondWithMessage writes a success envelope with no data.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, Envelope{Success: true, Message: message})
}

// RespondWithError writes a JSON error envelope with the given status code and message.
func RespondWithError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	opts ...ResponseOption,
) {
	RespondWithErrorAndLog(w, r, status, message, nil, opts...)
}

// RespondWithErrorAndLog writes a JSON error envelope and logs the detailed error.
// The raw error never reaches the client; it is logged in redacted form.
//
// Log level strategy:
//   - 5xx errors: ERROR
//   - 429 Too Many Requests: WARN
//   - other 4xx errors: DEBUG, or WARN with WithElevatedLogLevel
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case status == http.StatusTooManyRequests:
		logLevel = slog.LevelWarn
	case responseOpts.elevateLogLevel && status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, Envelope{
		Success:       false,
		Message:       userMessage,
		ValidStatuses: responseOpts.validStatuses,
		TraceID:       traceID,
	})
}
