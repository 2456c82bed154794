package osc

import "math/rand"

// Noise is a seeded white-noise source with output in [-1, 1).
type Noise struct {
	seed int64
	rng  *rand.Rand
}

// NewNoise returns a noise source with a deterministic seed.
func NewNoise(seed int64) *Noise {
	return &Noise{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Process returns the next noise sample.
func (n *Noise) Process() float64 {
	return n.rng.Float64()*2 - 1
}

// Sign returns +1 or -1 with equal probability.
func (n *Noise) Sign() float64 {
	if n.rng.Int63()&1 == 0 {
		return -1
	}

	return 1
}

// Seed returns the seed the source was created or last reset with.
func (n *Noise) Seed() int64 { return n.seed }

// Reset restarts the sequence from seed.
func (n *Noise) Reset(seed int64) {
	n.seed = seed
	n.rng.Seed(seed)
}
