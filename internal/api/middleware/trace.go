package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and stores a
// request-scoped logger carrying it. When chi's RequestID middleware ran
// first, its ID is attached as the request_id attribute as well.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				ctx = logger.WithRequestID(ctx, reqID)
			}

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			logger.FromContext(ctx).Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
