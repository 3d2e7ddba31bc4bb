package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prsboot/domain/core"
	"prsboot/domain/stats"
	"prsboot/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOOTSTRAP_ITERATIONS", "BOOTSTRAP_SEED", "RESULTS_FILE", "SAMPLE_ID_COLUMN",
		"PRS_COLUMN", "PANE_ANCESTRY_COLUMN", "SUPERVISED_ANCESTRY_COLUMN", "DATABASE_URL", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Bootstrap.Iterations)
	assert.False(t, cfg.Bootstrap.SeedSet)
	assert.Equal(t, core.ColumnName("IID"), cfg.Columns.SampleID)
	assert.Equal(t, core.ColumnName("PRS"), cfg.Columns.PRS)
	assert.Equal(t, "bootstrap_results.csv", cfg.Output.ResultsFile)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "8080", cfg.Server.Port)

	col, err := cfg.Columns.AncestryColumn(stats.ComparisonPANE, "")
	require.NoError(t, err)
	assert.Equal(t, core.ColumnName("NL.AncEMA"), col)
}

func TestSupervisedColumnMustBeConfigured(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	_, err = cfg.Columns.AncestryColumn(stats.ComparisonSupervised, "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "SUPERVISED_ANCESTRY_COLUMN")

	col, err := cfg.Columns.AncestryColumn(stats.ComparisonSupervised, "K3.Pop2")
	require.NoError(t, err)
	assert.Equal(t, core.ColumnName("K3.Pop2"), col)

	t.Setenv("SUPERVISED_ANCESTRY_COLUMN", "ADMIX.Q1")
	cfg, err = Load()
	require.NoError(t, err)
	col, err = cfg.Columns.AncestryColumn(stats.ComparisonSupervised, "")
	require.NoError(t, err)
	assert.Equal(t, core.ColumnName("ADMIX.Q1"), col)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOTSTRAP_ITERATIONS", "500")
	t.Setenv("BOOTSTRAP_SEED", "12345")
	t.Setenv("PRS_COLUMN", "SCORE")
	t.Setenv("DATABASE_URL", "postgres://localhost/prs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Bootstrap.Iterations)
	assert.True(t, cfg.Bootstrap.SeedSet)
	assert.Equal(t, int64(12345), cfg.Bootstrap.Seed)
	assert.Equal(t, core.ColumnName("SCORE"), cfg.Columns.PRS)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOTSTRAP_SEED", "forty-two")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	clearEnv(t)
	t.Setenv("BOOTSTRAP_ITERATIONS", "0")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOTSTRAP_ITERATIONS")
}
