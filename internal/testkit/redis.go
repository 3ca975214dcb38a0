package testkit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisModule is a running Redis instance.
type RedisModule struct {
	container testcontainers.Container
	addr      string
}

// Addr returns host:port.
func (r *RedisModule) Addr() string { return r.addr }

// Client returns a new client for database db.
func (r *RedisModule) Client(db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: r.addr, DB: db})
}

// Terminate stops the container, if one was started.
func (r *RedisModule) Terminate(ctx context.Context) error {
	if r.container == nil {
		return nil
	}
	return r.container.Terminate(ctx)
}

// StartRedis starts a Redis container, or wraps cfg.RedisAddr when set.
func StartRedis(ctx context.Context, cfg *Config) (*RedisModule, error) {
	if cfg.RedisAddr != "" {
		return &RedisModule{addr: cfg.RedisAddr}, nil
	}

	ctr, err := tcredis.Run(ctx, cfg.RedisImage)
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get redis connection string: %w", err)
	}

	// Stores and asynq take host:port, not redis:// URLs.
	u, err := url.Parse(connStr)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("parse redis connection string %q: %w", connStr, err)
	}
	return &RedisModule{container: ctr, addr: u.Host}, nil
}
