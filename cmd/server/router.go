package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/kanban-api/internal/api"
	apiMiddleware "github.com/phrazzld/kanban-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)

	r.Route("/api", func(r chi.Router) {
		api.RegisterRoutes(r, taskHandler, userHandler)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
