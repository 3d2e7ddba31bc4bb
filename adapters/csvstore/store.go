// Package csvstore keeps result records in the flat comma-separated results
// table that downstream spreadsheets consume. Each run appends one row; the
// header is written only when the file is created.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"prsboot/domain/core"
	"prsboot/domain/stats"
)

// Header is the column row of the results table
var Header = []string{
	"PRS_File",
	"Ancestry",
	"Comparison_Type",
	"Spearman_ρ",
	"p-value",
	"Bootstrap_95%_CI",
	"Bootstrap_SE",
}

// Store appends result records to one CSV file
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for path. The file is not touched until Append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the results file location
func (s *Store) Path() string {
	return s.path
}

// Append writes record as one row, preceded by the header when the file does
// not exist yet. The run ID is not part of the flat table.
func (s *Store) Append(ctx context.Context, _ core.RunID, record stats.ResultRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	writeHeader := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results file %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write results header: %w", err)
		}
	}
	if err := w.Write(FormatRecord(record)); err != nil {
		return fmt.Errorf("failed to write result row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results file %s: %w", s.path, err)
	}
	return f.Close()
}

// List reads every data row back. A missing file yields no records.
func (s *Store) List(ctx context.Context) ([]stats.ResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open results file %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = stats.RecordFieldCount

	var records []stats.ResultRecord
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		// Header rows may repeat if files were concatenated
		if row[0] == Header[0] && row[3] == Header[3] {
			continue
		}
		record, err := ParseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// FormatRecord renders a record as table cells
func FormatRecord(r stats.ResultRecord) []string {
	return []string{
		r.PRSFile,
		string(r.Ancestry),
		string(r.ComparisonType),
		FormatFloat(r.SpearmanRho),
		FormatFloat(r.PValue),
		FormatInterval(r.CI),
		FormatFloat(r.BootstrapSE),
	}
}

// ParseRecord is the inverse of FormatRecord
func ParseRecord(row []string) (stats.ResultRecord, error) {
	if len(row) != stats.RecordFieldCount {
		return stats.ResultRecord{}, fmt.Errorf("expected %d fields, got %d", stats.RecordFieldCount, len(row))
	}

	rho, err := parseFloat(row[3])
	if err != nil {
		return stats.ResultRecord{}, fmt.Errorf("invalid %s: %w", Header[3], err)
	}
	p, err := parseFloat(row[4])
	if err != nil {
		return stats.ResultRecord{}, fmt.Errorf("invalid %s: %w", Header[4], err)
	}
	ci, err := ParseInterval(row[5])
	if err != nil {
		return stats.ResultRecord{}, fmt.Errorf("invalid %s: %w", Header[5], err)
	}
	se, err := parseFloat(row[6])
	if err != nil {
		return stats.ResultRecord{}, fmt.Errorf("invalid %s: %w", Header[6], err)
	}

	return stats.ResultRecord{
		PRSFile:        row[0],
		Ancestry:       core.ColumnName(row[1]),
		ComparisonType: stats.ComparisonType(row[2]),
		SpearmanRho:    rho,
		PValue:         p,
		CI:             ci,
		BootstrapSE:    se,
	}, nil
}

// FormatFloat writes v the way the results table has always carried numbers:
// shortest round-trip digits, a trailing ".0" on integral values, exponent
// notation below 1e-4 or from 1e16, and an empty cell for NaN.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if v != 0 {
		sci := strconv.FormatFloat(v, 'e', -1, 64)
		exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return sci
		}
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatInterval renders "(lower, upper)" with four decimals; NaN bounds
// print as "nan".
func FormatInterval(ci stats.ConfidenceInterval) string {
	return "(" + fixed4(ci.Lower) + ", " + fixed4(ci.Upper) + ")"
}

func fixed4(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// ParseInterval reads the output of FormatInterval
func ParseInterval(s string) (stats.ConfidenceInterval, error) {
	inner := strings.TrimSpace(s)
	if !strings.HasPrefix(inner, "(") || !strings.HasSuffix(inner, ")") {
		return stats.ConfidenceInterval{}, fmt.Errorf("interval %q is not parenthesised", s)
	}
	parts := strings.Split(inner[1:len(inner)-1], ",")
	if len(parts) != 2 {
		return stats.ConfidenceInterval{}, fmt.Errorf("interval %q needs two bounds", s)
	}
	lower, err := parseFloat(strings.TrimSpace(parts[0]))
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}
	upper, err := parseFloat(strings.TrimSpace(parts[1]))
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}
	return stats.ConfidenceInterval{Lower: lower, Upper: upper}, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
