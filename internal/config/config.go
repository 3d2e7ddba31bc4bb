package config

import (
	"os"
	"strconv"
	"strings"

	"prsboot/domain/core"
	"prsboot/domain/stats"
	"prsboot/internal/errors"
)

// Defaults mirror the column names and file used by existing analyses
const (
	DefaultIterations      = 10000
	DefaultResultsFile     = "bootstrap_results.csv"
	DefaultSampleIDColumn  = "IID"
	DefaultPRSColumn       = "PRS"
	DefaultPANEColumn      = "NL.AncEMA"
	DefaultServerPort      = "8080"
)

// Config represents the complete application configuration
type Config struct {
	Bootstrap BootstrapConfig
	Columns   ColumnConfig
	Output    OutputConfig
	Database  DatabaseConfig
	Server    ServerConfig
}

// BootstrapConfig holds resampling settings
type BootstrapConfig struct {
	Iterations int
	Seed       int64
	SeedSet    bool // false means seed from the clock
}

// ColumnConfig names the columns read from the input tables. Ancestry is the
// comparison-type to column-name table; every comparison must be mapped
// explicitly.
type ColumnConfig struct {
	SampleID core.ColumnName
	PRS      core.ColumnName
	Ancestry map[stats.ComparisonType]core.ColumnName
}

// OutputConfig holds result destinations
type OutputConfig struct {
	ResultsFile string
}

// DatabaseConfig holds the optional Postgres mirror settings
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether results are mirrored to Postgres
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
// Entry points call godotenv.Load beforehand so a .env file is honoured.
func Load() (*Config, error) {
	config := &Config{}

	bootstrapConfig, err := loadBootstrapConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load bootstrap configuration")
	}
	config.Bootstrap = *bootstrapConfig

	config.Columns = *loadColumnConfig()
	config.Output = *loadOutputConfig()
	config.Database = *loadDatabaseConfig()
	config.Server = *loadServerConfig()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadBootstrapConfig() (*BootstrapConfig, error) {
	cfg := &BootstrapConfig{
		Iterations: getEnvIntOrDefault("BOOTSTRAP_ITERATIONS", DefaultIterations),
	}

	if raw := strings.TrimSpace(os.Getenv("BOOTSTRAP_SEED")); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("BOOTSTRAP_SEED must be an integer, got " + strconv.Quote(raw))
		}
		cfg.Seed = seed
		cfg.SeedSet = true
	}

	return cfg, nil
}

func loadColumnConfig() *ColumnConfig {
	ancestry := map[stats.ComparisonType]core.ColumnName{
		stats.ComparisonPANE: core.ColumnName(getEnvOrDefault("PANE_ANCESTRY_COLUMN", DefaultPANEColumn)),
	}
	// No default: the supervised admixture column differs between projects
	if col := os.Getenv("SUPERVISED_ANCESTRY_COLUMN"); col != "" {
		ancestry[stats.ComparisonSupervised] = core.ColumnName(col)
	}

	return &ColumnConfig{
		SampleID: core.ColumnName(getEnvOrDefault("SAMPLE_ID_COLUMN", DefaultSampleIDColumn)),
		PRS:      core.ColumnName(getEnvOrDefault("PRS_COLUMN", DefaultPRSColumn)),
		Ancestry: ancestry,
	}
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		ResultsFile: getEnvOrDefault("RESULTS_FILE", DefaultResultsFile),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL: os.Getenv("DATABASE_URL"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", DefaultServerPort),
	}
}

// Validate checks settings that do not depend on the selected comparison
func (c *Config) Validate() error {
	if c.Bootstrap.Iterations < 1 {
		return errors.ConfigInvalid("BOOTSTRAP_ITERATIONS must be at least 1")
	}
	if c.Columns.SampleID == "" {
		return errors.ConfigInvalid("sample ID column name is required")
	}
	if c.Columns.PRS == "" {
		return errors.ConfigInvalid("PRS column name is required")
	}
	if c.Output.ResultsFile == "" {
		return errors.ConfigInvalid("results file is required")
	}
	return nil
}

// AncestryColumn resolves the ancestry column for a comparison. An explicit
// override wins over the configured table.
func (c ColumnConfig) AncestryColumn(comparison stats.ComparisonType, override string) (core.ColumnName, error) {
	if override = strings.TrimSpace(override); override != "" {
		return core.ColumnName(override), nil
	}
	col, ok := c.Ancestry[comparison]
	if !ok || col == "" {
		return "", errors.ConfigInvalid("no ancestry column configured for comparison '" + string(comparison) +
			"'; set " + envKeyFor(comparison) + " or pass --ancestry-column")
	}
	return col, nil
}

func envKeyFor(comparison stats.ComparisonType) string {
	switch comparison {
	case stats.ComparisonPANE:
		return "PANE_ANCESTRY_COLUMN"
	case stats.ComparisonSupervised:
		return "SUPERVISED_ANCESTRY_COLUMN"
	}
	return strings.ToUpper(string(comparison)) + "_ANCESTRY_COLUMN"
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
