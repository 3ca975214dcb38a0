package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps the payload in a Redis hash shared by every process
// pointing at the same key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Read returns the stored payload; connection errors read as absent.
func (s *RedisStore) Read(ctx context.Context) ([]byte, bool) {
	data, err := s.client.HGet(ctx, s.key, "payload").Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write stores the payload together with the time it was written.
func (s *RedisStore) Write(ctx context.Context, payload []byte) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, "payload", payload, "written_at", time.Now().UTC().Format(time.RFC3339))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: redis key %s: %w", ErrInvalidCache, s.key, err)
	}
	return nil
}

// Ping checks connectivity to the Redis server.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
