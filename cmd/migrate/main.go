// Command migrate prepares the Postgres schema and backfills it from an
// existing results file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"prsboot/adapters/csvstore"
	"prsboot/adapters/postgres"
	"prsboot/domain/core"
	"prsboot/internal"
	"prsboot/internal/errors"
	"prsboot/internal/migration"
	"prsboot/ports"
)

func main() {
	logger := internal.DefaultLogger

	if len(os.Args) < 2 {
		logger.Error("Usage: migrate <database_url> [results_csv]")
		os.Exit(2)
	}

	databaseURL := os.Args[1]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		logger.Error("Migration failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Schema is at version %s", runner.Version())

	if len(os.Args) < 3 {
		return
	}

	resultsFile := os.Args[2]
	logger.Info("Importing %s", resultsFile)

	imported, err := importResults(ctx, csvstore.NewStore(resultsFile), postgres.NewResultRepository(db))
	if err != nil {
		logger.Error("Import failed after %d record(s): %v", imported, err)
		os.Exit(1)
	}
	logger.Info("Imported %d record(s) from %s", imported, resultsFile)
}

// importResults copies every record in src into dst under a single run ID and
// returns how many were written
func importResults(ctx context.Context, src, dst ports.ResultStorePort) (int, error) {
	records, err := src.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read results")
	}

	runID := core.NewRunID()
	for i, record := range records {
		if err := dst.Append(ctx, runID, record); err != nil {
			return i, errors.Wrapf(err, "failed to import record %d", i+1)
		}
	}
	return len(records), nil
}
