package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ratebank/internal/cache"
)

var _ cache.Store = (*PostgresStore)(nil)

// PostgresStore keeps the rates payload in a single named row of rate_cache.
type PostgresStore struct {
	db   *sql.DB
	name string
	log  *zap.SugaredLogger
}

// NewPostgresStore creates a PostgresStore for the row identified by name.
func NewPostgresStore(db *sql.DB, name string, logger *zap.SugaredLogger) *PostgresStore {
	return &PostgresStore{db: db, name: name, log: logger}
}

// Read returns the stored payload, or false when the row is missing or the query fails.
func (s *PostgresStore) Read(ctx context.Context) ([]byte, bool) {
	query := `SELECT payload FROM rate_cache WHERE name = $1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		s.log.Warnw("Failed to read rates cache row", "name", s.name, "error", err)
		return nil, false
	}
	return payload, true
}

// Write upserts the payload; the last writer wins.
func (s *PostgresStore) Write(ctx context.Context, payload []byte) error {
	query := `INSERT INTO rate_cache (name, payload, updated_at)
              VALUES ($1, $2, NOW())
              ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, s.name, payload); err != nil {
		return fmt.Errorf("%w: rate_cache row %s: %w", cache.ErrInvalidCache, s.name, err)
	}
	return nil
}

// Ping checks connectivity to the database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
