// Package dataset joins the input tables on the sample identifier and extracts
// the paired numeric columns the correlation runs on.
package dataset

import (
	"fmt"
	"math"
	"strconv"

	"prsboot/domain/core"
	domain "prsboot/domain/dataset"
)

// Suffixes appended to overlapping non-key column names
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// JoinType defines the type of merge/join operation
type JoinType string

const (
	InnerJoin JoinType = "inner" // INNER JOIN - matching keys only
)

// MergeResult summarises one join
type MergeResult struct {
	JoinType    JoinType `json:"join_type"`
	LeftRows    int      `json:"left_rows"`
	RightRows   int      `json:"right_rows"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
	Renamed     []string `json:"renamed,omitempty"`
}

// Inner joins left and right on the key column. Output rows follow left-row
// order; a left row matching k right rows yields k output rows in right-row
// order. The key appears once, at its position among the left columns, followed
// by the remaining right columns. Non-key columns present on both sides are
// renamed with LeftSuffix and RightSuffix.
func Inner(left, right *domain.Table, on core.ColumnName) (*domain.Table, *MergeResult, error) {
	leftKey, ok := left.ColumnIndex(on)
	if !ok {
		return nil, nil, core.NewMissingColumnError(left.Source, on)
	}
	rightKey, ok := right.ColumnIndex(on)
	if !ok {
		return nil, nil, core.NewMissingColumnError(right.Source, on)
	}

	headers, renamed := joinedHeaders(left, right, on, rightKey)

	joined, err := domain.NewTable(left.Source+" + "+right.Source, headers)
	if err != nil {
		return nil, nil, fmt.Errorf("joining %s and %s: %w", left.Source, right.Source, err)
	}

	// Right rows by key, in file order
	byKey := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		byKey[row[rightKey]] = append(byKey[row[rightKey]], i)
	}

	for _, lrow := range left.Rows {
		for _, ri := range byKey[lrow[leftKey]] {
			rrow := right.Rows[ri]
			out := make([]string, 0, len(headers))
			out = append(out, lrow...)
			for j, cell := range rrow {
				if j != rightKey {
					out = append(out, cell)
				}
			}
			if err := joined.AddRow(out); err != nil {
				return nil, nil, err
			}
		}
	}

	return joined, &MergeResult{
		JoinType:    InnerJoin,
		LeftRows:    left.RowCount(),
		RightRows:   right.RowCount(),
		RowCount:    joined.RowCount(),
		ColumnCount: joined.ColumnCount(),
		Renamed:     renamed,
	}, nil
}

func joinedHeaders(left, right *domain.Table, on core.ColumnName, rightKey int) ([]core.ColumnName, []string) {
	overlap := make(map[core.ColumnName]bool)
	for j, h := range right.Headers {
		if j != rightKey && left.HasColumn(h) && h != on {
			overlap[h] = true
		}
	}

	var renamed []string
	headers := make([]core.ColumnName, 0, len(left.Headers)+len(right.Headers)-1)
	for _, h := range left.Headers {
		if overlap[h] {
			renamed = append(renamed, string(h))
			h += LeftSuffix
		}
		headers = append(headers, h)
	}
	for j, h := range right.Headers {
		if j == rightKey {
			continue
		}
		if overlap[h] {
			h += RightSuffix
		}
		headers = append(headers, h)
	}
	return headers, renamed
}

// ExtractPairs parses the ancestry and PRS columns of a joined table. Every
// cell must hold a finite number; empty, NA and non-numeric cells are rejected
// with the offending row and column.
func ExtractPairs(table *domain.Table, idColumn, ancestryColumn, prsColumn core.ColumnName) (*domain.PairedSamples, error) {
	ids, ok := table.Column(idColumn)
	if !ok {
		return nil, core.NewMissingColumnError(table.Source, idColumn)
	}
	ancCells, ok := table.Column(ancestryColumn)
	if !ok {
		return nil, core.NewMissingColumnError(table.Source, ancestryColumn)
	}
	prsCells, ok := table.Column(prsColumn)
	if !ok {
		return nil, core.NewMissingColumnError(table.Source, prsColumn)
	}

	pairs := &domain.PairedSamples{
		SampleIDs: make([]core.SampleID, len(ids)),
		Ancestry:  make([]float64, len(ids)),
		PRS:       make([]float64, len(ids)),
	}

	for i := range ids {
		anc, err := parseValue(ancCells[i])
		if err != nil {
			return nil, core.NewInvalidValueError(table.Source, i+1, ancestryColumn, ancCells[i])
		}
		prs, err := parseValue(prsCells[i])
		if err != nil {
			return nil, core.NewInvalidValueError(table.Source, i+1, prsColumn, prsCells[i])
		}
		pairs.SampleIDs[i] = core.SampleID(ids[i])
		pairs.Ancestry[i] = anc
		pairs.PRS[i] = prs
	}

	return pairs, nil
}

func parseValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}
