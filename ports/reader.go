package ports

import (
	"context"

	"prsboot/domain/dataset"
)

// TableReaderPort loads one tabular input file into memory
type TableReaderPort interface {
	ReadTable(ctx context.Context, path string) (*dataset.Table, error)
}
