package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prsboot/domain/core"
)

func TestNewTableRejectsDuplicateHeaders(t *testing.T) {
	_, err := NewTable("key.tsv", []core.ColumnName{"IID", "FID", "IID"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicateHeader)

	_, err = NewTable("key.tsv", nil)
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestTableAddRowAndColumn(t *testing.T) {
	table, err := NewTable("prs.tsv", []core.ColumnName{"IID", "PRS"})
	require.NoError(t, err)

	require.NoError(t, table.AddRow([]string{"s1", "0.5"}))
	require.NoError(t, table.AddRow([]string{"s2", "-1.2"}))

	err = table.AddRow([]string{"s3"})
	assert.ErrorIs(t, err, core.ErrRaggedRow)

	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, 2, table.ColumnCount())
	assert.True(t, table.HasColumn("PRS"))
	assert.False(t, table.HasColumn("prs"))

	col, ok := table.Column("PRS")
	require.True(t, ok)
	assert.Equal(t, []string{"0.5", "-1.2"}, col)

	col[0] = "mutated"
	again, _ := table.Column("PRS")
	assert.Equal(t, "0.5", again[0], "Column must return a copy")
}

func TestTableZeroValueIndexesLazily(t *testing.T) {
	table := &Table{Headers: []core.ColumnName{"IID", "NL.AncEMA"}}
	idx, ok := table.ColumnIndex("NL.AncEMA")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestPairedSamplesValidate(t *testing.T) {
	tests := []struct {
		name    string
		pairs   PairedSamples
		wantErr error
	}{
		{"aligned", PairedSamples{Ancestry: []float64{1, 2}, PRS: []float64{3, 4}}, nil},
		{"mismatch", PairedSamples{Ancestry: []float64{1, 2}, PRS: []float64{3}}, core.ErrLengthMismatch},
		{"ids mismatch", PairedSamples{SampleIDs: []core.SampleID{"a"}, Ancestry: []float64{1, 2}, PRS: []float64{3, 4}}, core.ErrLengthMismatch},
		{"single", PairedSamples{Ancestry: []float64{1}, PRS: []float64{3}}, core.ErrInsufficientSamples},
		{"empty", PairedSamples{}, core.ErrInsufficientSamples},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pairs.Validate("prs.txt")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPairedSamplesValidate_NamesSource(t *testing.T) {
	pairs := PairedSamples{Ancestry: []float64{0.3}, PRS: []float64{1.2}}
	err := pairs.Validate("key.txt + ancestry.txt + prs.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 after joining key.txt + ancestry.txt + prs.txt")
}
