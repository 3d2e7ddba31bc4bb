// Package bootstrap estimates the sampling distribution of Spearman's rho by
// nonparametric resampling of paired observations.
//
// Each replicate draws N indices with replacement and applies the same draw to
// both sequences, so a resampled ancestry value always travels with the PRS
// value of the same sample. Replicates whose resample is constant in either
// sequence have no rank correlation; they are kept as NaN and make the interval
// and standard error NaN as well.
package bootstrap

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"prsboot/adapters/stats/senses"
	"prsboot/domain/core"
	domainstats "prsboot/domain/stats"
	"prsboot/ports"
)

const (
	// DefaultIterations is the number of bootstrap resamples
	DefaultIterations = 10000

	// Percentile bounds of the two-sided 95% interval
	lowerPercentile = 2.5
	upperPercentile = 97.5
)

// ProgressFunc is called after each replicate with the number completed so far
type ProgressFunc func(done, total int)

// Estimator runs the bootstrap correlation procedure. It holds no per-run
// state and may be reused.
type Estimator struct {
	sense      *senses.SpearmanSense
	iterations int
	progress   ProgressFunc
}

// Option configures an Estimator
type Option func(*Estimator)

// WithIterations sets the number of bootstrap replicates
func WithIterations(n int) Option {
	return func(e *Estimator) {
		e.iterations = n
	}
}

// WithProgress installs a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(e *Estimator) {
		e.progress = fn
	}
}

// NewEstimator creates an estimator with DefaultIterations replicates
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		sense:      senses.NewSpearmanSense(),
		iterations: DefaultIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Iterations returns the configured replicate count
func (e *Estimator) Iterations() int {
	return e.iterations
}

// Estimate computes the original Spearman correlation of the paired sequences,
// then draws Iterations() resamples using rng and derives the percentile 95%
// interval and the bootstrap standard error.
func (e *Estimator) Estimate(ancestry, prs []float64, rng ports.IndexSampler) (domainstats.Estimate, error) {
	if e.iterations < 1 {
		return domainstats.Estimate{}, fmt.Errorf("%w: got %d", core.ErrInvalidReplicates, e.iterations)
	}
	if rng == nil {
		return domainstats.Estimate{}, fmt.Errorf("bootstrap: nil random source")
	}

	origRho, origP, err := e.sense.Correlate(ancestry, prs)
	if err != nil {
		return domainstats.Estimate{}, err
	}

	replicates, undefined := e.resample(ancestry, prs, rng)

	lower, upper := PercentileInterval(replicates, lowerPercentile, upperPercentile)

	// Population standard deviation (divisor B); NaN replicates propagate
	se, err := stats.StandardDeviationPopulation(replicates)
	if err != nil {
		return domainstats.Estimate{}, fmt.Errorf("bootstrap: standard error: %w", err)
	}
	mean, err := stats.Mean(replicates)
	if err != nil {
		return domainstats.Estimate{}, fmt.Errorf("bootstrap: replicate mean: %w", err)
	}

	return domainstats.Estimate{
		Rho:                 origRho,
		PValue:              origP,
		CI:                  domainstats.ConfidenceInterval{Lower: lower, Upper: upper},
		StdErr:              se,
		Replicates:          replicates,
		SampleSize:          len(ancestry),
		ReplicateMean:       mean,
		UndefinedReplicates: undefined,
	}, nil
}

// resample draws the replicates. One index draw per position feeds both
// sequences.
func (e *Estimator) resample(ancestry, prs []float64, rng ports.IndexSampler) ([]float64, int) {
	n := len(ancestry)
	replicates := make([]float64, e.iterations)
	xs := make([]float64, n)
	ys := make([]float64, n)
	undefined := 0

	for b := 0; b < e.iterations; b++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			xs[i] = ancestry[j]
			ys[i] = prs[j]
		}

		rho := e.sense.Rho(xs, ys)
		if math.IsNaN(rho) {
			undefined++
		}
		replicates[b] = rho

		if e.progress != nil {
			e.progress(b+1, e.iterations)
		}
	}

	return replicates, undefined
}

// PercentileInterval returns the lo-th and hi-th percentiles (0-100) of values
// using linear interpolation between order statistics. Any NaN in values makes
// both bounds NaN. values is not modified.
func PercentileInterval(values []float64, lo, hi float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return math.NaN(), math.NaN()
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return percentileSorted(sorted, lo), percentileSorted(sorted, hi)
}

// Percentile returns the p-th percentile (0-100) of values with linear
// interpolation between the closest ranks.
func Percentile(values []float64, p float64) float64 {
	lower, _ := PercentileInterval(values, p, p)
	return lower
}

// percentileSorted interpolates at rank h = (n-1)·p/100 of an ascending slice
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	h := float64(n-1) * p / 100
	below := int(math.Floor(h))
	frac := h - float64(below)
	if below+1 >= n {
		return sorted[n-1]
	}
	return sorted[below] + frac*(sorted[below+1]-sorted[below])
}
