package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by plain Redis string keys without expiry.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
