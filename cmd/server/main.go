// Package main implements the entry point for the kanban API server, which
// serves the task board and user listing over JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a migration command (up, down, reset, status, version) and exit")
	seed := flag.Bool("seed", false, "Insert demo users and tasks and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd, *seed); err != nil {
		log.Fatalf("kanban server: %s", redact.Error(err))
	}
}

// run wires configuration, logging and the database, then either performs a
// one-shot maintenance command or serves HTTP until shutdown.
func run(ctx context.Context, migrateCmd string, seed bool) error {
	// A missing .env file is normal outside local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" || seed {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("Error closing database connection", "error", err)
			}
		}()

		if migrateCmd != "" {
			if err := runMigrations(ctx, db, migrateCmd, appLogger); err != nil {
				return err
			}
		}
		if seed {
			if err := seedDatabase(ctx, db, appLogger); err != nil {
				return err
			}
		}
		return nil
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the server configuration and logs its non-secret parts.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	slog.Debug("Database configuration", "url_present", cfg.Database.URL != "")

	return cfg, nil
}
