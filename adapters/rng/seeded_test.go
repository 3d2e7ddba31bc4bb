package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(t *testing.T, seed int64) []int {
	t.Helper()
	r, err := NewSeededAdapter().SeededStream(context.Background(), "bootstrap", seed)
	require.NoError(t, err)
	out := make([]int, 20)
	for i := range out {
		out[i] = r.Intn(1000)
	}
	return out
}

func TestSeededStreamIsDeterministic(t *testing.T) {
	assert.Equal(t, draws(t, 42), draws(t, 42))
	assert.NotEqual(t, draws(t, 42), draws(t, 43))
}

func TestSeededStreamHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeededAdapter().SeededStream(ctx, "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClockSeedVaries(t *testing.T) {
	assert.NotZero(t, ClockSeed())
}
