package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prsboot/domain/core"
	domain "prsboot/domain/dataset"
)

func table(t *testing.T, source string, headers []core.ColumnName, rows ...[]string) *domain.Table {
	t.Helper()
	tbl, err := domain.NewTable(source, headers)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, tbl.AddRow(r))
	}
	return tbl
}

func TestInner_PreservesLeftOrderAndDropsUnmatched(t *testing.T) {
	key := table(t, "key.txt", []core.ColumnName{"IID"},
		[]string{"s3"}, []string{"s1"}, []string{"s9"}, []string{"s2"})
	anc := table(t, "anc.txt", []core.ColumnName{"IID", "NL.AncEMA"},
		[]string{"s1", "0.1"}, []string{"s2", "0.2"}, []string{"s3", "0.3"})

	joined, result, err := Inner(key, anc, "IID")
	require.NoError(t, err)

	assert.Equal(t, []core.ColumnName{"IID", "NL.AncEMA"}, joined.Headers)
	assert.Equal(t, [][]string{{"s3", "0.3"}, {"s1", "0.1"}, {"s2", "0.2"}}, joined.Rows)
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 4, result.LeftRows)
	assert.Equal(t, InnerJoin, result.JoinType)
	assert.Equal(t, "key.txt + anc.txt", joined.Source)
}

func TestInner_DuplicateKeysMultiply(t *testing.T) {
	left := table(t, "l", []core.ColumnName{"IID", "a"},
		[]string{"s1", "l1"}, []string{"s1", "l2"})
	right := table(t, "r", []core.ColumnName{"b", "IID"},
		[]string{"r1", "s1"}, []string{"r2", "s1"}, []string{"r3", "s2"})

	joined, _, err := Inner(left, right, "IID")
	require.NoError(t, err)

	assert.Equal(t, []core.ColumnName{"IID", "a", "b"}, joined.Headers)
	assert.Equal(t, [][]string{
		{"s1", "l1", "r1"},
		{"s1", "l1", "r2"},
		{"s1", "l2", "r1"},
		{"s1", "l2", "r2"},
	}, joined.Rows)
}

func TestInner_SuffixesOverlappingColumns(t *testing.T) {
	key := table(t, "key", []core.ColumnName{"FID", "IID"}, []string{"f1", "s1"})
	prs := table(t, "prs", []core.ColumnName{"FID", "IID", "PRS"}, []string{"g1", "s1", "0.5"})

	joined, result, err := Inner(key, prs, "IID")
	require.NoError(t, err)

	assert.Equal(t, []core.ColumnName{"FID_x", "IID", "FID_y", "PRS"}, joined.Headers)
	assert.Equal(t, [][]string{{"f1", "s1", "g1", "0.5"}}, joined.Rows)
	assert.Equal(t, []string{"FID"}, result.Renamed)
}

func TestInner_MissingKey(t *testing.T) {
	left := table(t, "key.txt", []core.ColumnName{"IID"})
	right := table(t, "prs.txt", []core.ColumnName{"ID", "PRS"})

	_, _, err := Inner(left, right, "IID")
	require.Error(t, err)
	assert.True(t, core.IsMissingColumnError(err))
	assert.Contains(t, err.Error(), "prs.txt")
}

func TestInner_NoOverlapYieldsEmptyTable(t *testing.T) {
	left := table(t, "l", []core.ColumnName{"IID"}, []string{"a"})
	right := table(t, "r", []core.ColumnName{"IID", "PRS"}, []string{"b", "1"})

	joined, _, err := Inner(left, right, "IID")
	require.NoError(t, err)
	assert.Zero(t, joined.RowCount())
	assert.Equal(t, 2, joined.ColumnCount())
}

func TestExtractPairs(t *testing.T) {
	joined := table(t, "joined", []core.ColumnName{"IID", "NL.AncEMA", "PRS"},
		[]string{"s1", "0.25", "-1.5"},
		[]string{"s2", "1e-2", "3"})

	pairs, err := ExtractPairs(joined, "IID", "NL.AncEMA", "PRS")
	require.NoError(t, err)

	assert.Equal(t, []core.SampleID{"s1", "s2"}, pairs.SampleIDs)
	assert.Equal(t, []float64{0.25, 0.01}, pairs.Ancestry)
	assert.Equal(t, []float64{-1.5, 3}, pairs.PRS)
	assert.NoError(t, pairs.Validate(joined.Source))
}

func TestExtractPairs_RejectsInvalidCells(t *testing.T) {
	for _, raw := range []string{"", "NA", "NaN", "abc", "inf"} {
		joined := table(t, "joined", []core.ColumnName{"IID", "NL.AncEMA", "PRS"},
			[]string{"s1", "0.5", "1"},
			[]string{"s2", "0.6", raw})

		_, err := ExtractPairs(joined, "IID", "NL.AncEMA", "PRS")
		require.Error(t, err, "raw %q", raw)
		assert.ErrorIs(t, err, core.ErrInvalidValue)
		assert.Contains(t, err.Error(), "row 2")
		assert.Contains(t, err.Error(), "'PRS'")
	}
}

func TestExtractPairs_MissingColumn(t *testing.T) {
	joined := table(t, "key.txt + anc.txt + prs.txt", []core.ColumnName{"IID", "PRS"})

	_, err := ExtractPairs(joined, "IID", "NL.AncEMA", "PRS")
	require.Error(t, err)
	assert.True(t, core.IsMissingColumnError(err))
	assert.Contains(t, err.Error(), "'NL.AncEMA'")
}
