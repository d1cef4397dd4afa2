package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("snapshot not found")

// Store persists whole snapshots under string keys.
type Store interface {
	// Load returns the value stored under key or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save overwrites the value stored under key.
	Save(ctx context.Context, key string, value []byte) error

	// Close releases the underlying connection.
	Close() error
}

// Open returns the Store selected by cfg.SnapshotBackend.
func Open(ctx context.Context, cfg config.ClientConfig) (Store, error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotBackendSQLite:
		return OpenSQLite(ctx, cfg.SnapshotPath)
	case config.SnapshotBackendRedis:
		return OpenRedis(ctx, &redis.Options{Addr: cfg.RedisAddr})
	case config.SnapshotBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
