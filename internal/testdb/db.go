package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// gooseMu serializes goose's package-level configuration across parallel tests.
var gooseMu sync.Mutex

// GetTestDatabaseURL returns the database URL for tests.
// It checks DATABASE_URL and KANBAN_TEST_DB_URL in that order.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("KANBAN_TEST_DB_URL")
}

// GetTestDBWithT returns a migrated database connection for testing.
// It skips the test if no database URL is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or KANBAN_TEST_DB_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "Failed to open database connection")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "Database ping failed")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	SetupTestDatabaseSchema(t, db)
	return db
}

// SetupTestDatabaseSchema applies the embedded goose migrations.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&testGooseLogger{t: t})
	goose.SetTableName(postgres.MigrationsTable)
	goose.SetBaseFS(postgres.Migrations)
	defer goose.SetBaseFS(nil)

	require.NoError(t, goose.SetDialect("postgres"), "Failed to set goose dialect")
	require.NoError(t, goose.Up(db, postgres.MigrationsDir), "Failed to run migrations")
}

// WithTx executes fn within a transaction that is rolled back afterwards,
// so tests never see each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// testGooseLogger routes goose output to the test log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Log("Goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatal("Goose fatal error: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
