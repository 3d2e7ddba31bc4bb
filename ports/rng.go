package ports

import (
	"context"
	"math/rand"
)

// IndexSampler draws uniform integers in [0, n). *rand.Rand satisfies it.
// The bootstrap estimator depends only on this so tests can script the draws.
type IndexSampler interface {
	Intn(n int) int
}

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
