package dataset

import (
	"fmt"

	"prsboot/domain/core"
)

// Table is a header-addressed grid of raw string cells as read from one input file.
// Cells stay unparsed until a column is extracted for computation.
type Table struct {
	Source  string
	Headers []core.ColumnName
	Rows    [][]string

	index map[core.ColumnName]int
}

// NewTable creates a table with the given headers. Duplicate headers are rejected
// because joins address columns by name.
func NewTable(source string, headers []core.ColumnName) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyTable, source)
	}

	index := make(map[core.ColumnName]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("%w: '%s' in %s", core.ErrDuplicateHeader, h, source)
		}
		index[h] = i
	}

	return &Table{
		Source:  source,
		Headers: headers,
		index:   index,
	}, nil
}

// AddRow appends a row; its width must match the header.
func (t *Table) AddRow(cells []string) error {
	if len(cells) != len(t.Headers) {
		return fmt.Errorf("%w: %s row %d has %d cells, expected %d",
			core.ErrRaggedRow, t.Source, len(t.Rows)+1, len(cells), len(t.Headers))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// ColumnIndex returns the position of a column
func (t *Table) ColumnIndex(name core.ColumnName) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table carries the named column
func (t *Table) HasColumn(name core.ColumnName) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Column returns a copy of one column's raw cells
func (t *Table) Column(name core.ColumnName) ([]string, bool) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

func (t *Table) reindex() {
	t.index = make(map[core.ColumnName]int, len(t.Headers))
	for i, h := range t.Headers {
		t.index[h] = i
	}
}
