package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; a migration is never edited once released.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS cheques (
		id          TEXT PRIMARY KEY,
		sender      TEXT NOT NULL,
		receiver    TEXT NOT NULL,
		amount      NUMERIC NOT NULL,
		cheque_date DATE NOT NULL,
		expiry_date DATE NOT NULL,
		status      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS cheques_status_expiry_idx ON cheques (status, expiry_date)`,
}

// Migrate brings the schema up to date, recording applied versions in schema_migrations.
// It returns how many migrations were applied.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return 0, fmt.Errorf("creating schema_migrations: %w", err)
	}

	applied := 0
	for i, stmt := range migrations {
		version := i + 1

		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, version).Scan(&exists); err != nil {
			return applied, err
		}
		if exists {
			continue
		}

		if err := apply(ctx, db, version, stmt); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, version int, stmt string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migration %d failed: %w", version, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES($1)`, version); err != nil {
		return err
	}
	return tx.Commit()
}
