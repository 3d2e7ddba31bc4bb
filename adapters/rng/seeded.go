// Package rng provides the seeded random streams used for resampling
package rng

import (
	"context"
	"math/rand"
	"time"

	"prsboot/ports"
)

// SeededAdapter implements the RNGPort interface with math/rand sources
type SeededAdapter struct{}

// NewSeededAdapter creates a new seeded RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator. The name only
// labels the stream; equal seeds yield equal sequences.
func (r *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// ClockSeed returns a seed for runs that did not ask for reproducibility
func ClockSeed() int64 {
	return time.Now().UnixNano()
}

var _ ports.RNGPort = (*SeededAdapter)(nil)
