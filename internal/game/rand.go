package game

import (
	"math/rand"
	"sync"
)

// Rand is the uniform random source used for dice rolls, number targets and
// weighted transition sampling.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a concurrency-safe random source seeded from the global
// generator.
func NewRand() Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(rand.Int63()))}
}

// NewSeededRand returns a deterministic random source for tests.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// WeightedIndex draws an index with probability proportional to weights.
// Zero or negative total weight falls back to a uniform draw.
func WeightedIndex(rng Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if r <= cum {
			return i
		}
	}
	return len(weights) - 1
}
