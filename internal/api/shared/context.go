package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of context keys owned by this package.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID(rand.Reader))
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters read from r. A short or failed
// read falls back to a random UUID with the hyphens removed.
func generateTraceID(r io.Reader) string {
	b := make([]byte, TraceIDLength)
	if _, err := io.ReadFull(r, b); err != nil {
		slog.Error("failed to generate random trace ID, using uuid fallback", "error", err)
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}
