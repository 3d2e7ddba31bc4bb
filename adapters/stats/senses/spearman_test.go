package senses

import (
	"math"
	"testing"

	"prsboot/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSpearman_KnownValue checks against the textbook example with a tie in y
func TestSpearman_KnownValue(t *testing.T) {
	sense := NewSpearmanSense()

	rho, p, err := sense.Correlate([]float64{1, 2, 3, 4, 5}, []float64{5, 6, 7, 8, 7})
	require.NoError(t, err)

	assert.InDelta(t, 0.8207826816681233, rho, 1e-12)
	assert.InDelta(t, 0.08858700531354381, p, 1e-8)
}

func TestSpearman_PerfectMonotonic(t *testing.T) {
	sense := NewSpearmanSense()

	tests := []struct {
		name    string
		x, y    []float64
		wantRho float64
	}{
		{
			name:    "increasing non-linear",
			x:       []float64{0.1, 0.2, 0.3, 0.4, 0.5},
			y:       []float64{1, 4, 9, 16, 25},
			wantRho: 1,
		},
		{
			name:    "decreasing",
			x:       []float64{0.1, 0.2, 0.3, 0.4, 0.5},
			y:       []float64{0.5, 0.4, 0.3, 0.2, 0.1},
			wantRho: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho, p, err := sense.Correlate(tt.x, tt.y)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantRho, rho, 1e-12)
			assert.InDelta(t, 0, p, 1e-12)
		})
	}
}

// TestSpearman_TwoSamples verifies both possible orderings at the N=2 boundary
func TestSpearman_TwoSamples(t *testing.T) {
	sense := NewSpearmanSense()

	rho, p, err := sense.Correlate([]float64{0.2, 0.7}, []float64{1.5, 3.0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rho, 1e-12)
	assert.True(t, math.IsNaN(p), "p-value has zero degrees of freedom at N=2")

	rho, _, err = sense.Correlate([]float64{0.2, 0.7}, []float64{3.0, 1.5})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, rho, 1e-12)
}

func TestSpearman_ConstantInputIsNaN(t *testing.T) {
	sense := NewSpearmanSense()

	rho, p, err := sense.Correlate([]float64{0.3, 0.3, 0.3}, []float64{1, 2, 3})
	require.NoError(t, err, "zero variance is not an error")
	assert.True(t, math.IsNaN(rho))
	assert.True(t, math.IsNaN(p))
}

func TestSpearman_InvalidInput(t *testing.T) {
	sense := NewSpearmanSense()

	_, _, err := sense.Correlate([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	_, _, err = sense.Correlate([]float64{1}, []float64{2})
	assert.ErrorIs(t, err, core.ErrInsufficientSamples)

	_, _, err = sense.Correlate(nil, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientSamples)
}

func TestSpearman_RanksAverageTies(t *testing.T) {
	sense := NewSpearmanSense()

	ranks := sense.computeRanks([]float64{10, 20, 20, 5, 20})
	assert.Equal(t, []float64{2, 4, 4, 1, 4}, ranks)
}

func TestSpearman_PValueSymmetric(t *testing.T) {
	sense := NewSpearmanSense()

	pPos := sense.PValue(0.4, 30)
	pNeg := sense.PValue(-0.4, 30)
	assert.InDelta(t, pPos, pNeg, 1e-15)
	assert.Greater(t, pPos, 0.0)
	assert.Less(t, pPos, 0.05)
	assert.InDelta(t, 1.0, sense.PValue(0, 30), 1e-12)
}

func TestSpearman_Describe(t *testing.T) {
	sense := NewSpearmanSense()

	tests := []struct {
		name string
		rho  float64
		p    float64
		want string
	}{
		{"very strong negative", -1, 0, "very strong negative association between NL.AncEMA and PRS (rho = -1.0000, p = 0)"},
		{"moderate positive", 0.42, 0.0012, "moderate positive association between NL.AncEMA and PRS (rho = 0.4200, p = 0.0012)"},
		{"weak boundary", 0.1, 0.01, "weak positive association between NL.AncEMA and PRS (rho = 0.1000, p = 0.01)"},
		{"not significant", 0.1, 0.6, "no significant association between NL.AncEMA and PRS (rho = 0.1000, p = 0.6)"},
		{"n of two", 1, math.NaN(), "no significant association between NL.AncEMA and PRS (rho = 1.0000, p = NaN)"},
		{"constant column", math.NaN(), math.NaN(), "association between NL.AncEMA and PRS is undefined: one column is constant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sense.Describe(tt.rho, tt.p, "NL.AncEMA", "PRS"))
		})
	}
}
