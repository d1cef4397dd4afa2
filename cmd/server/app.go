package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore store.TaskStore
	userStore store.UserStore

	taskService service.TaskService
	userService service.UserService
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)

	var err error
	app.taskService, err = service.NewTaskService(app.taskStore, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	app.userService = service.NewUserService(app.userStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until a shutdown signal arrives or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
