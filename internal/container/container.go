package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"prsboot/adapters/csvstore"
	"prsboot/adapters/npy"
	"prsboot/adapters/postgres"
	"prsboot/adapters/rng"
	"prsboot/adapters/tabular"
	"prsboot/app"
	"prsboot/internal"
	"prsboot/internal/config"
	"prsboot/internal/errors"
	"prsboot/internal/migration"
	"prsboot/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	Reader     ports.TableReaderPort
	Results    *csvstore.Store
	Mirror     *postgres.ResultRepository
	RNG        ports.RNGPort
	Replicates ports.ReplicateSinkPort
}

// New creates a container with file-based adapters. The database mirror is
// added by Connect or InitWithDatabase.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Reader:     tabular.NewReader(logger),
		Results:    csvstore.NewStore(cfg.Output.ResultsFile),
		RNG:        rng.NewSeededAdapter(),
		Replicates: npy.NewReplicateWriter(),
	}, nil
}

// UseResultsFile points the results store at path
func (c *Container) UseResultsFile(path string) {
	c.Results = csvstore.NewStore(path)
}

// Connect opens DATABASE_URL when configured and attaches the Postgres mirror.
// It is a no-op without a database URL.
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return errors.DatabaseError("failed to prepare results table", err)
	}

	c.DB = db
	c.Mirror = postgres.NewResultRepository(db)
	c.Logger.Debug("results are mirrored to Postgres")
	return nil
}

// BootstrapService wires a service from the container's adapters; opts are
// applied after the defaults
func (c *Container) BootstrapService(opts ...app.ServiceOption) *app.BootstrapService {
	defaults := []app.ServiceOption{
		app.WithLogger(c.Logger),
		app.WithDefaultIterations(c.Config.Bootstrap.Iterations),
		app.WithReplicateSink(c.Replicates),
	}
	if c.Config.Bootstrap.SeedSet {
		defaults = append(defaults, app.WithDefaultSeed(c.Config.Bootstrap.Seed))
	}
	if c.Mirror != nil {
		defaults = append(defaults, app.WithMirror(c.Mirror))
	}
	return app.NewBootstrapService(c.Reader, c.Results, c.RNG, c.Config.Columns, append(defaults, opts...)...)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
