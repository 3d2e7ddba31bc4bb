package ports

import (
	"context"

	"prsboot/domain/core"
	"prsboot/domain/stats"
)

// ResultStorePort persists result records. Repeated runs accumulate rows;
// there is no primary key on the record itself.
type ResultStorePort interface {
	// Append adds one record, creating the underlying store if it does not exist
	Append(ctx context.Context, runID core.RunID, record stats.ResultRecord) error

	// List returns all stored records in insertion order
	List(ctx context.Context) ([]stats.ResultRecord, error)
}

// ReplicateSinkPort receives the raw bootstrap replicates of a run
type ReplicateSinkPort interface {
	WriteReplicates(ctx context.Context, path string, replicates []float64) error
}
