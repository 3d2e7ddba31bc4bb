package testkit

import (
	"context"
	"sync"

	"prsboot/adapters/rng"
	"prsboot/domain/core"
	"prsboot/domain/stats"
	"prsboot/ports"
)

// TestKit bundles in-memory adapters for exercising the bootstrap service
// without touching disk or a database
type TestKit struct {
	rng       *rng.SeededAdapter
	results   *InMemoryResultStore
	replicate *InMemoryReplicateSink
}

// NewTestKit creates a kit with fresh in-memory adapters
func NewTestKit() *TestKit {
	return &TestKit{
		rng:       rng.NewSeededAdapter(),
		results:   NewInMemoryResultStore(),
		replicate: NewInMemoryReplicateSink(),
	}
}

// RNGAdapter returns the deterministic RNG port
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return t.rng
}

// ResultStore returns the in-memory result store
func (t *TestKit) ResultStore() *InMemoryResultStore {
	return t.results
}

// ReplicateSink returns the in-memory replicate sink
func (t *TestKit) ReplicateSink() *InMemoryReplicateSink {
	return t.replicate
}

// StoredResult is one appended record with its run
type StoredResult struct {
	RunID  core.RunID
	Record stats.ResultRecord
}

// InMemoryResultStore implements ResultStorePort with in-memory storage
type InMemoryResultStore struct {
	mu      sync.RWMutex
	results []StoredResult
}

func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{}
}

func (s *InMemoryResultStore) Append(ctx context.Context, runID core.RunID, record stats.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, StoredResult{RunID: runID, Record: record})
	return nil
}

func (s *InMemoryResultStore) List(ctx context.Context) ([]stats.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]stats.ResultRecord, len(s.results))
	for i, r := range s.results {
		records[i] = r.Record
	}
	return records, nil
}

// Results returns the stored records together with their run IDs
func (s *InMemoryResultStore) Results() []StoredResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]StoredResult(nil), s.results...)
}

// InMemoryReplicateSink implements ReplicateSinkPort keyed by path
type InMemoryReplicateSink struct {
	mu     sync.RWMutex
	writes map[string][]float64
}

func NewInMemoryReplicateSink() *InMemoryReplicateSink {
	return &InMemoryReplicateSink{writes: make(map[string][]float64)}
}

func (s *InMemoryReplicateSink) WriteReplicates(ctx context.Context, path string, replicates []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes[path] = append([]float64(nil), replicates...)
	return nil
}

// Replicates returns what was written to path
func (s *InMemoryReplicateSink) Replicates(path string) ([]float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.writes[path]
	return r, ok
}

var (
	_ ports.ResultStorePort   = (*InMemoryResultStore)(nil)
	_ ports.ReplicateSinkPort = (*InMemoryReplicateSink)(nil)
)
