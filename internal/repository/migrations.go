package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name        TEXT PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RunMigrations applies the embedded SQL migrations in file name order, each
// in its own transaction. Applied migrations are recorded in
// schema_migrations and skipped on later runs.
func RunMigrations(db *sql.DB, logger *zap.SugaredLogger) error {
	return runMigrations(context.Background(), db, migrationsFS, logger)
}

func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, logger *zap.SugaredLogger) error {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return fmt.Errorf("migrations read error: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()

		var applied bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			logger.Debugw("Migration already applied", "name", name)
			continue
		}

		script, err := fs.ReadFile(fsys, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", name, err)
		}
		if err := executeMigration(ctx, db, name, string(script)); err != nil {
			return err
		}
		logger.Infow("Applied migration", "name", name)
	}
	return nil
}

func executeMigration(ctx context.Context, db *sql.DB, name, script string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for migration %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
