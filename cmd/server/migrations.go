package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationCommands lists the goose commands accepted by -migrate.
var migrationCommands = []string{"up", "down", "reset", "status", "version"}

// slogGooseLogger adapts the goose logger interface to use slog
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error.
// It does not exit; the error is returned to main instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrations executes a goose command against db using the migrations
// embedded in the postgres package.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	// Use a correlation ID for all migration logs to allow tracing the entire operation
	migrationLogger := logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(postgres.Migrations)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(postgres.MigrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	dir := postgres.MigrationsDir
	start := time.Now()
	migrationLogger.Info("Starting migration operation", "operation", "goose "+command)

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "reset":
		err = goose.ResetContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "version":
		err = goose.VersionContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown migration command: %s (expected one of %s)",
			command, strings.Join(migrationCommands, ", "))
	}
	if err != nil {
		migrationLogger.Error("Migration command failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	migrationLogger.Info("Migration command executed successfully",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
