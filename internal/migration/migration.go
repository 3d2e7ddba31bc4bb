package migration

import (
	"context"

	"prsboot/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createBootstrapResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bootstrap_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createBootstrapResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bootstrap_results (
			id              BIGSERIAL PRIMARY KEY,
			run_id          UUID NOT NULL,
			prs_file        TEXT NOT NULL,
			ancestry        TEXT NOT NULL,
			comparison_type TEXT NOT NULL,
			spearman_rho    DOUBLE PRECISION,
			p_value         DOUBLE PRECISION,
			ci_lower        DOUBLE PRECISION,
			ci_upper        DOUBLE PRECISION,
			bootstrap_se    DOUBLE PRECISION,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_bootstrap_results_run_id ON bootstrap_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bootstrap_results_created_at ON bootstrap_results(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bootstrap_results_comparison ON bootstrap_results(comparison_type, prs_file)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
