package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// IntN returns a random int in [0, n). It panics if n <= 0.
func (r *RNG) IntN(n int) int { return r.r.IntN(n) }

// Float64 returns a random float in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// Shuffle pseudo-randomizes the order of n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) { r.r.Shuffle(n, swap) }
