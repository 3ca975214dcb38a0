package testkit

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
)

// Suite owns the Postgres and Redis instances shared by one test binary.
type Suite struct {
	mu    sync.Mutex
	cfg   Config
	pg    *PostgresModule
	redis *RedisModule
	ready bool
}

var (
	globalSuite *Suite
	globalOnce  sync.Once
)

// Global returns the process-wide Suite.
func Global() *Suite {
	globalOnce.Do(func() {
		globalSuite = &Suite{cfg: LoadConfig()}
	})
	return globalSuite
}

// Setup starts Postgres and Redis. Calling it twice without Shutdown fails.
func (s *Suite) Setup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return fmt.Errorf("suite already set up; call Shutdown first")
	}

	pg, err := StartPostgres(ctx, &s.cfg)
	if err != nil {
		return fmt.Errorf("setup postgres: %w", err)
	}

	rdb, err := StartRedis(ctx, &s.cfg)
	if err != nil {
		if !s.cfg.KeepContainers {
			_ = pg.Terminate(ctx)
		}
		return fmt.Errorf("setup redis: %w", err)
	}

	s.pg, s.redis, s.ready = pg, rdb, true
	return nil
}

// Shutdown terminates the containers unless KeepContainers is set.
func (s *Suite) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return
	}
	s.ready = false

	if s.cfg.KeepContainers {
		fmt.Printf("keeping containers: postgres=%s redis=%s\n", s.pg.DSN(), s.redis.Addr())
		return
	}

	if err := s.redis.Terminate(ctx); err != nil {
		fmt.Println("warning: failed to terminate redis container:", err)
	}
	if err := s.pg.Terminate(ctx); err != nil {
		fmt.Println("warning: failed to terminate postgres container:", err)
	}
}

// Postgres returns the running Postgres module, or nil before Setup.
func (s *Suite) Postgres() *PostgresModule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pg
}

// Redis returns the running Redis module, or nil before Setup.
func (s *Suite) Redis() *RedisModule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redis
}

// Run sets up the suite, runs afterSetup (migrations, client wiring), runs
// the tests and shuts down. Intended for TestMain.
func (s *Suite) Run(m *testing.M, afterSetup ...func(ctx context.Context) error) {
	ctx := context.Background()

	if err := s.Setup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	for _, fn := range afterSetup {
		if err := fn(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "afterSetup callback failed: %v\n", err)
			s.Shutdown(ctx)
			os.Exit(1)
		}
	}

	code := m.Run()

	s.Shutdown(ctx)
	os.Exit(code)
}

// Run delegates to Global().Run.
func Run(m *testing.M, afterSetup ...func(ctx context.Context) error) {
	Global().Run(m, afterSetup...)
}
