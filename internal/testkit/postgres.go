package testkit

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver registration
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresModule is a running Postgres instance.
type PostgresModule struct {
	container testcontainers.Container
	dsn       string
}

// DSN returns the connection string.
func (p *PostgresModule) DSN() string { return p.dsn }

// Open connects to the instance with the pgx driver and pings it.
func (p *PostgresModule) Open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", p.dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Terminate stops the container, if one was started.
func (p *PostgresModule) Terminate(ctx context.Context) error {
	if p.container == nil {
		return nil
	}
	return p.container.Terminate(ctx)
}

// StartPostgres starts a Postgres container, or wraps cfg.PGDSN when set.
func StartPostgres(ctx context.Context, cfg *Config) (*PostgresModule, error) {
	if cfg.PGDSN != "" {
		return &PostgresModule{dsn: cfg.PGDSN}, nil
	}

	ctr, err := postgres.Run(ctx,
		cfg.PGImage,
		postgres.WithDatabase(randomName("ratebank")),
		postgres.WithUsername("ratebank"),
		postgres.WithPassword("ratebank"),
		testcontainers.WithWaitStrategyAndDeadline(cfg.StartupTimeout,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get postgres connection string: %w", err)
	}
	return &PostgresModule{container: ctr, dsn: dsn}, nil
}

// randomName returns prefix_ followed by eight hex characters.
func randomName(prefix string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return prefix + "_test"
	}
	return prefix + "_" + hex.EncodeToString(b)
}
