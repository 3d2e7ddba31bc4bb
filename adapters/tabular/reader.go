package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"prsboot/domain/core"
	"prsboot/domain/dataset"
	"prsboot/internal"
)

// Format identifies how a file is parsed
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ctxCheckInterval is how many rows are parsed between cancellation checks
const ctxCheckInterval = 4096

const utf8BOM = "\ufeff"

// DetectFormat maps a file extension to a format. Anything that is not .csv or
// .xlsx is read as tab-delimited text, which is what cohort pipelines emit.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls", ".xlsm", ".ods":
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, path)
	default:
		return FormatTSV, nil
	}
}

// Reader loads TSV, CSV and XLSX files into dataset tables
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a reader logging through logger (DefaultLogger when nil)
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger}
}

// ReadTable reads the file at path. The first row is the header; every later
// row must have the same width.
func (r *Reader) ReadTable(ctx context.Context, path string) (*dataset.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %w", strings.ToUpper(string(format)), err)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	start := time.Now()
	var table *dataset.Table
	switch format {
	case FormatXLSX:
		table, err = r.readExcel(ctx, path)
	case FormatCSV:
		table, err = r.readDelimited(ctx, path, ',')
	default:
		table, err = r.readDelimited(ctx, path, '\t')
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("[TableReader] %s read in %.2fms (%d columns, %d rows)",
		path, float64(time.Since(start).Nanoseconds())/1e6, table.ColumnCount(), table.RowCount())
	return table, nil
}

// readDelimited reads text data split on delim
func (r *Reader) readDelimited(ctx context.Context, path string, delim rune) (*dataset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // width is checked against the header below

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyTable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	table, err := dataset.NewTable(path, headerNames(header))
	if err != nil {
		return nil, err
	}

	for rowNum := 0; ; rowNum++ {
		if rowNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		line, _ := reader.FieldPos(0)
		if err := table.AddRow(trimCells(record)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return table, nil
}

// readExcel reads the first worksheet of a workbook
func (r *Reader) readExcel(ctx context.Context, path string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no worksheets", core.ErrEmptyTable, path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheets[0], path, err)
	}
	defer rows.Close()

	var table *dataset.Table
	for line := 1; rows.Next(); line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of %s: %w", line, path, err)
		}

		if table == nil {
			if len(cells) == 0 {
				continue
			}
			table, err = dataset.NewTable(path, headerNames(cells))
			if err != nil {
				return nil, err
			}
			continue
		}

		// Blank rows come back empty
		if len(cells) == 0 {
			continue
		}
		// Trailing empty cells are omitted by excelize
		for len(cells) < table.ColumnCount() {
			cells = append(cells, "")
		}
		if err := table.AddRow(trimCells(cells)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %s: %w", path, err)
	}

	if table == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyTable, path)
	}
	return table, nil
}

func headerNames(raw []string) []core.ColumnName {
	headers := make([]core.ColumnName, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headers[i] = core.ColumnName(strings.TrimSpace(h))
	}
	return headers
}

func trimCells(cells []string) []string {
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
