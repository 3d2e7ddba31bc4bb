package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"prsboot/adapters/rng"
	"prsboot/adapters/stats/bootstrap"
	"prsboot/adapters/stats/senses"
	"prsboot/domain/core"
	domaindataset "prsboot/domain/dataset"
	"prsboot/domain/stats"
	"prsboot/internal"
	"prsboot/internal/config"
	"prsboot/internal/dataset"
	"prsboot/internal/profiling"
	"prsboot/ports"
)

// BootstrapService runs one PRS-vs-ancestry bootstrap analysis end to end:
// load the three input tables, join them on the sample ID, extract the paired
// columns, estimate, and persist the result row.
type BootstrapService struct {
	reader     ports.TableReaderPort
	store      ports.ResultStorePort
	mirrors    []ports.ResultStorePort
	sink       ports.ReplicateSinkPort
	rngPort    ports.RNGPort
	columns    config.ColumnConfig
	iterations int
	seed       *int64
	progress   bootstrap.ProgressFunc
	profiler   *profiling.DataProfiler
	sense      *senses.SpearmanSense
	logger     *internal.Logger
}

// ServiceOption configures optional collaborators
type ServiceOption func(*BootstrapService)

// WithMirror adds a secondary store. Mirror failures are logged, not returned.
func WithMirror(store ports.ResultStorePort) ServiceOption {
	return func(s *BootstrapService) {
		s.mirrors = append(s.mirrors, store)
	}
}

// WithReplicateSink enables writing replicates when a request names a path
func WithReplicateSink(sink ports.ReplicateSinkPort) ServiceOption {
	return func(s *BootstrapService) {
		s.sink = sink
	}
}

// WithDefaultIterations sets the replicate count used when a request leaves it zero
func WithDefaultIterations(n int) ServiceOption {
	return func(s *BootstrapService) {
		s.iterations = n
	}
}

// WithDefaultSeed fixes the seed used when a request does not set one
func WithDefaultSeed(seed int64) ServiceOption {
	return func(s *BootstrapService) {
		s.seed = &seed
	}
}

// WithProgress installs a per-replicate progress callback
func WithProgress(fn bootstrap.ProgressFunc) ServiceOption {
	return func(s *BootstrapService) {
		s.progress = fn
	}
}

// WithLogger sets the service logger
func WithLogger(logger *internal.Logger) ServiceOption {
	return func(s *BootstrapService) {
		s.logger = logger
	}
}

// BootstrapRequest defines the inputs of one analysis
type BootstrapRequest struct {
	KeySamplesPath string
	PRSPath        string
	AncestryPath   string
	ComparisonType stats.ComparisonType
	AncestryColumn string // overrides the configured column when set
	Iterations     int    // zero selects the service default
	Seed           int64
	SeedSet        bool   // false selects the service default seed, else the clock
	ReplicatesPath string // empty skips the replicate dump
}

// BootstrapResult is the outcome of one analysis
type BootstrapResult struct {
	RunID               core.RunID         `json:"run_id"`
	Record              stats.ResultRecord `json:"record"`
	Estimate            stats.Estimate     `json:"-"`
	SampleSize          int                `json:"sample_size"`
	Iterations          int                `json:"n_boot"`
	Seed                int64              `json:"seed"`
	UndefinedReplicates int                `json:"undefined_replicates"`
	Summary             string             `json:"summary"`
	RuntimeMs           int64              `json:"runtime_ms"`
}

// NewBootstrapService creates a bootstrap service
func NewBootstrapService(reader ports.TableReaderPort, store ports.ResultStorePort, rngPort ports.RNGPort, columns config.ColumnConfig, opts ...ServiceOption) *BootstrapService {
	s := &BootstrapService{
		reader:     reader,
		store:      store,
		rngPort:    rngPort,
		columns:    columns,
		iterations: bootstrap.DefaultIterations,
		profiler:   profiling.NewDataProfiler(),
		sense:      senses.NewSpearmanSense(),
		logger:     internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the analysis described by req and appends its record to the
// configured stores
func (s *BootstrapService) Run(ctx context.Context, req BootstrapRequest) (*BootstrapResult, error) {
	startTime := time.Now()
	runID := core.NewRunID()

	comparison, err := stats.ParseComparisonType(string(req.ComparisonType))
	if err != nil {
		return nil, err
	}
	ancestryColumn, err := s.columns.AncestryColumn(comparison, req.AncestryColumn)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Running analysis for %s vs PRS comparisons.", comparison.Method())

	key, anc, prs, err := s.loadTables(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing %s with %s...", req.PRSPath, ancestryColumn)

	pairs, err := s.pairSamples(key, anc, prs, ancestryColumn)
	if err != nil {
		return nil, err
	}
	s.logProfiles(pairs, ancestryColumn)

	iterations := req.Iterations
	if iterations == 0 {
		iterations = s.iterations
	}
	seed := req.Seed
	if !req.SeedSet {
		if s.seed != nil {
			seed = *s.seed
		} else {
			seed = rng.ClockSeed()
		}
	}
	stream, err := s.rngPort.SeededStream(ctx, "bootstrap/"+string(comparison), seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create random stream: %w", err)
	}

	s.logger.Debug("run %s: %d paired samples, %d replicates, seed %d", runID, pairs.Len(), iterations, seed)

	estimator := bootstrap.NewEstimator(bootstrap.WithIterations(iterations), bootstrap.WithProgress(s.progress))
	est, err := estimator.Estimate(pairs.Ancestry, pairs.PRS, stream)
	if err != nil {
		return nil, fmt.Errorf("bootstrap estimation failed: %w", err)
	}

	if est.UndefinedReplicates > 0 {
		s.logger.Warn("%v: %d of %d replicates drew a constant resample; interval and standard error are NaN",
			core.ErrUndefinedCorrelation, est.UndefinedReplicates, iterations)
	}

	summary := s.sense.Describe(est.Rho, est.PValue, string(ancestryColumn), string(s.columns.PRS))
	s.logger.Info("%s: %s", req.PRSPath, summary)

	record := stats.NewResultRecord(req.PRSPath, ancestryColumn, comparison, est)
	if err := s.persist(ctx, runID, record); err != nil {
		return nil, err
	}

	if req.ReplicatesPath != "" {
		if s.sink == nil {
			return nil, fmt.Errorf("replicate output requested but no replicate writer is configured")
		}
		if err := s.sink.WriteReplicates(ctx, req.ReplicatesPath, est.Replicates); err != nil {
			return nil, err
		}
		s.logger.Info("Bootstrap replicates saved to '%s'.", req.ReplicatesPath)
	}

	return &BootstrapResult{
		RunID:               runID,
		Record:              record,
		Estimate:            est,
		SampleSize:          pairs.Len(),
		Iterations:          iterations,
		Seed:                seed,
		UndefinedReplicates: est.UndefinedReplicates,
		Summary:             summary,
		RuntimeMs:           time.Since(startTime).Milliseconds(),
	}, nil
}

// loadTables reads the three inputs concurrently
func (s *BootstrapService) loadTables(ctx context.Context, req BootstrapRequest) (key, anc, prs *domaindataset.Table, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.reader.ReadTable(gctx, req.KeySamplesPath)
		key = t
		return err
	})
	g.Go(func() error {
		t, err := s.reader.ReadTable(gctx, req.AncestryPath)
		anc = t
		return err
	})
	g.Go(func() error {
		t, err := s.reader.ReadTable(gctx, req.PRSPath)
		prs = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return key, anc, prs, nil
}

// pairSamples joins key ⋈ ancestry, then ⋈ PRS, and extracts the two columns
func (s *BootstrapService) pairSamples(key, anc, prs *domaindataset.Table, ancestryColumn core.ColumnName) (*domaindataset.PairedSamples, error) {
	idColumn := s.columns.SampleID

	keyAnc, _, err := dataset.Inner(key, anc, idColumn)
	if err != nil {
		return nil, err
	}
	joined, merge, err := dataset.Inner(keyAnc, prs, idColumn)
	if err != nil {
		return nil, err
	}
	if len(merge.Renamed) > 0 {
		s.logger.Debug("columns present in more than one input were suffixed: %v", merge.Renamed)
	}

	for _, col := range []core.ColumnName{s.columns.PRS, ancestryColumn} {
		if !joined.HasColumn(col) {
			return nil, core.NewMissingColumnError(joined.Source, col)
		}
		s.logger.Info("Column '%s' found in the data.", col)
	}

	pairs, err := dataset.ExtractPairs(joined, idColumn, ancestryColumn, s.columns.PRS)
	if err != nil {
		return nil, err
	}
	if err := pairs.Validate(joined.Source); err != nil {
		return nil, err
	}
	return pairs, nil
}

// logProfiles summarises both paired columns at debug level
func (s *BootstrapService) logProfiles(pairs *domaindataset.PairedSamples, ancestryColumn core.ColumnName) {
	if !s.logger.Enabled(internal.LogLevelDebug) {
		return
	}
	profiles, err := s.profiler.ProfileDataset(map[string][]float64{
		string(ancestryColumn): pairs.Ancestry,
		string(s.columns.PRS):  pairs.PRS,
	})
	if err != nil {
		s.logger.Debug("column profiling skipped: %v", err)
		return
	}
	for _, p := range profiles {
		s.logger.Debug("%s", p)
	}
}

func (s *BootstrapService) persist(ctx context.Context, runID core.RunID, record stats.ResultRecord) error {
	if err := s.store.Append(ctx, runID, record); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	for _, mirror := range s.mirrors {
		if err := mirror.Append(ctx, runID, record); err != nil {
			s.logger.Warn("failed to mirror result for run %s: %v", runID, err)
		}
	}
	return nil
}

// ListResults returns the records held by the primary store
func (s *BootstrapService) ListResults(ctx context.Context) ([]stats.ResultRecord, error) {
	return s.store.List(ctx)
}
