package senses

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"prsboot/domain/core"
)

// SpearmanSense computes Spearman's rank correlation and its asymptotic p-value
type SpearmanSense struct{}

// NewSpearmanSense creates a new Spearman correlation sense
func NewSpearmanSense() *SpearmanSense {
	return &SpearmanSense{}
}


// Correlate returns Spearman's rho and the two-sided p-value under independence.
// Sequences must have equal length of at least 2. rho is NaN when either
// sequence is constant.
func (s *SpearmanSense) Correlate(x, y []float64) (float64, float64, error) {
	if len(x) != len(y) {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: x has %d values, y has %d", core.ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return math.NaN(), math.NaN(), core.NewInsufficientSamplesError("", len(x))
	}

	rho := s.Rho(x, y)
	return rho, s.PValue(rho, len(x)), nil
}

// Rho computes the rank correlation without validating its input. Callers
// guarantee len(x) == len(y) >= 2.
func (s *SpearmanSense) Rho(x, y []float64) float64 {
	xRanks := s.computeRanks(x)
	yRanks := s.computeRanks(y)

	// Pearson on ranks; 0/0 yields NaN for a constant rank vector
	rho := stat.Correlation(xRanks, yRanks, nil)
	if math.IsNaN(rho) {
		return rho
	}

	// Clamp to [-1, 1] range (due to floating point precision)
	if rho > 1.0 {
		rho = 1.0
	} else if rho < -1.0 {
		rho = -1.0
	}
	return rho
}

// PValue returns the two-sided p-value of rho for n samples using the
// t-distribution with n-2 degrees of freedom.
func (s *SpearmanSense) PValue(rho float64, n int) float64 {
	df := float64(n - 2)
	if math.IsNaN(rho) || df <= 0 {
		return math.NaN()
	}
	if math.Abs(rho) >= 1.0 {
		return 0
	}

	// t = r * sqrt(df / ((1+r)(1-r)))
	tStat := rho * math.Sqrt(df/((1+rho)*(1-rho)))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	return 2 * tDist.Survival(math.Abs(tStat))
}

// computeRanks converts values to 1-based ranks, averaging ties
func (s *SpearmanSense) computeRanks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)

	i := 0
	for i < n {
		j := i + 1

		// Find the end of the tie group
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0

		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}

		i = j
	}

	return ranks
}

// significanceLevel is the two-sided alpha used by Describe
const significanceLevel = 0.05

// strengthBands maps |rho| upper bounds to labels, checked in order
var strengthBands = []struct {
	below float64
	label string
}{
	{0.1, "negligible"},
	{0.3, "weak"},
	{0.5, "moderate"},
	{0.7, "strong"},
	{math.Inf(1), "very strong"},
}

// Describe summarises rho and its p-value for the ancestry column x and the
// score column y in one sentence
func (s *SpearmanSense) Describe(rho, pValue float64, x, y string) string {
	if math.IsNaN(rho) {
		return fmt.Sprintf("association between %s and %s is undefined: one column is constant", x, y)
	}
	figures := fmt.Sprintf("rho = %.4f, p = %.3g", rho, pValue)
	if math.IsNaN(pValue) || pValue >= significanceLevel {
		return fmt.Sprintf("no significant association between %s and %s (%s)", x, y, figures)
	}

	direction := "positive"
	if rho < 0 {
		direction = "negative"
	}
	label := strengthBands[len(strengthBands)-1].label
	for _, band := range strengthBands {
		if math.Abs(rho) < band.below {
			label = band.label
			break
		}
	}
	return fmt.Sprintf("%s %s association between %s and %s (%s)", label, direction, x, y, figures)
}
