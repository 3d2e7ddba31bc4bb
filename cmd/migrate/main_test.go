package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prsboot/adapters/csvstore"
	"prsboot/domain/core"
	"prsboot/domain/stats"
	"prsboot/internal/testkit"
)

func sampleRecord(prsFile string, rho float64) stats.ResultRecord {
	return stats.ResultRecord{
		PRSFile:        prsFile,
		Ancestry:       "NL.AncEMA",
		ComparisonType: stats.ComparisonPANE,
		SpearmanRho:    rho,
		PValue:         0.01,
		CI:             stats.ConfidenceInterval{Lower: 0.05, Upper: 0.2},
		BootstrapSE:    0.04,
	}
}

func TestImportResults(t *testing.T) {
	ctx := context.Background()
	src := csvstore.NewStore(filepath.Join(t.TempDir(), "results.csv"))
	require.NoError(t, src.Append(ctx, core.NewRunID(), sampleRecord("a.txt", 0.12)))
	require.NoError(t, src.Append(ctx, core.NewRunID(), sampleRecord("b.txt", math.NaN())))

	dst := testkit.NewInMemoryResultStore()
	n, err := importResults(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored := dst.Results()
	require.Len(t, stored, 2)
	assert.Equal(t, "a.txt", stored[0].Record.PRSFile)
	assert.Equal(t, "b.txt", stored[1].Record.PRSFile)
	assert.True(t, math.IsNaN(stored[1].Record.SpearmanRho))
	assert.Equal(t, stored[0].RunID, stored[1].RunID, "one run ID per import")
}

func TestImportResults_MissingFileImportsNothing(t *testing.T) {
	src := csvstore.NewStore(filepath.Join(t.TempDir(), "absent.csv"))
	dst := testkit.NewInMemoryResultStore()

	n, err := importResults(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, dst.Results())
}

type failingStore struct {
	*testkit.InMemoryResultStore
	failAt int
	calls  int
}

func (f *failingStore) Append(ctx context.Context, runID core.RunID, record stats.ResultRecord) error {
	f.calls++
	if f.calls == f.failAt {
		return fmt.Errorf("connection reset")
	}
	return f.InMemoryResultStore.Append(ctx, runID, record)
}

func TestImportResults_StopsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	src := testkit.NewInMemoryResultStore()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, src.Append(ctx, core.NewRunID(), sampleRecord(name, 0.3)))
	}

	dst := &failingStore{InMemoryResultStore: testkit.NewInMemoryResultStore(), failAt: 2}
	n, err := importResults(ctx, src, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
	assert.Equal(t, 1, n)
	assert.Len(t, dst.Results(), 1)
}
