// Package testkit starts the Postgres and Redis instances that back the
// integration tests, either as testcontainers or from external addresses.
package testkit

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven settings for the integration test infrastructure.
type Config struct {
	PGImage        string
	RedisImage     string
	PGDSN          string        // RATEBANK_TEST_PG_DSN; skips the Postgres container.
	RedisAddr      string        // RATEBANK_TEST_REDIS_ADDR; skips the Redis container.
	StartupTimeout time.Duration // Max wait for a container to become ready.
	KeepContainers bool          // Leave containers running after the suite ends.
}

// LoadConfig reads the RATEBANK_TEST_* environment variables.
func LoadConfig() Config {
	return Config{
		PGImage:        envOr("RATEBANK_TEST_PG_IMAGE", "postgres:18.1-alpine"),
		RedisImage:     envOr("RATEBANK_TEST_REDIS_IMAGE", "redis:8.4.0-alpine"),
		PGDSN:          os.Getenv("RATEBANK_TEST_PG_DSN"),
		RedisAddr:      os.Getenv("RATEBANK_TEST_REDIS_ADDR"),
		StartupTimeout: envDuration("RATEBANK_TEST_STARTUP_TIMEOUT", 90*time.Second),
		KeepContainers: envBool("RATEBANK_TEST_KEEP_CONTAINERS", false),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration accepts a Go duration or a plain number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	fmt.Fprintf(os.Stderr, "testkit: invalid %s=%q, using %v\n", key, v, def)
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testkit: invalid %s=%q, using %v\n", key, v, def)
		return def
	}
	return b
}
