package testkit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prsboot/adapters/stats/senses"
	"prsboot/internal/dataset"
)

func TestCohortGenerator_Shapes(t *testing.T) {
	config := DefaultCohortConfig()
	config.SampleCount = 50
	config.Overlap = 0.8
	config.ExtraSamples = 5

	cohort, err := NewCohortGenerator(config).Generate()
	require.NoError(t, err)

	assert.Equal(t, 50, cohort.Key.RowCount())
	assert.Equal(t, 40+5, cohort.Ancestry.RowCount())
	assert.Equal(t, 55, cohort.PRS.RowCount())
	assert.Equal(t, 40, cohort.Shared)

	keyAnc, _, err := dataset.Inner(cohort.Key, cohort.Ancestry, "IID")
	require.NoError(t, err)
	joined, _, err := dataset.Inner(keyAnc, cohort.PRS, "IID")
	require.NoError(t, err)
	assert.Equal(t, 40, joined.RowCount())
	assert.True(t, joined.HasColumn("FID_x"))
	assert.True(t, joined.HasColumn("FID_y"))
}

func TestCohortGenerator_Deterministic(t *testing.T) {
	first, err := NewCohortGenerator(DefaultCohortConfig()).Generate()
	require.NoError(t, err)
	second, err := NewCohortGenerator(DefaultCohortConfig()).Generate()
	require.NoError(t, err)

	assert.Equal(t, first.PRS.Rows, second.PRS.Rows)
	assert.Equal(t, first.Ancestry.Rows, second.Ancestry.Rows)
}

func TestCohortGenerator_AssociationFollowsRho(t *testing.T) {
	tests := []struct {
		name string
		rho  float64
		sign float64
	}{
		{"positive", 0.8, 1},
		{"negative", -0.8, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCohortConfig()
			config.SampleCount = 500
			config.Overlap = 1
			config.Rho = tt.rho

			cohort, err := NewCohortGenerator(config).Generate()
			require.NoError(t, err)

			keyAnc, _, err := dataset.Inner(cohort.Key, cohort.Ancestry, "IID")
			require.NoError(t, err)
			joined, _, err := dataset.Inner(keyAnc, cohort.PRS, "IID")
			require.NoError(t, err)
			pairs, err := dataset.ExtractPairs(joined, "IID", "NL.AncEMA", "PRS")
			require.NoError(t, err)

			rho := senses.NewSpearmanSense().Rho(pairs.Ancestry, pairs.PRS)
			assert.Greater(t, tt.sign*rho, 0.6)
		})
	}
}

func TestCohortGenerator_RejectsInvalidConfig(t *testing.T) {
	config := DefaultCohortConfig()
	config.Rho = 1.5
	_, err := NewCohortGenerator(config).Generate()
	assert.Error(t, err)

	config = DefaultCohortConfig()
	config.SampleCount = 0
	_, err = NewCohortGenerator(config).Generate()
	assert.Error(t, err)
}

func TestCohort_WriteFiles(t *testing.T) {
	cohort, err := NewCohortGenerator(DefaultCohortConfig()).Generate()
	require.NoError(t, err)

	files, err := cohort.WriteFiles(filepath.Join(t.TempDir(), "cohort"))
	require.NoError(t, err)

	assert.FileExists(t, files.KeySamples)
	assert.FileExists(t, files.Ancestry)
	assert.FileExists(t, files.PRS)
}
