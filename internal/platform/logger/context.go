package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// WithLogger returns a copy of ctx carrying l.
// It panics if l is nil.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		panic("logger: WithLogger called with nil logger")
	}
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or slog.Default() when none is set.
// A request ID stored with WithRequestID is attached as the "request_id" attribute.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, slog.Default())
}

// FromContextOrDefault is like FromContext but falls back to the supplied logger.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	l := fallback
	if ctx != nil {
		if stored, ok := ctx.Value(loggerKey).(*slog.Logger); ok && stored != nil {
			l = stored
		}
	}
	if l == nil {
		l = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}

// WithRequestID returns a copy of ctx carrying the request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
