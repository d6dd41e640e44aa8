package testutil

import (
	"math/rand"
	"sync"
	"time"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// IntRange returns a pseudo-random number in [minVal, maxVal].
func (r *RNG) IntRange(minVal, maxVal int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Intn(maxVal-minVal+1)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Jitter returns a pseudo-random duration in [0, maxJitter).
func (r *RNG) Jitter(maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Duration(r.rand.Int63n(int64(maxJitter)))
}

// OpKind distinguishes the two resource operations.
type OpKind int

const (
	// OpConsume removes units.
	OpConsume OpKind = iota
	// OpProduce adds units.
	OpProduce
)

// Op is one randomly generated resource operation.
type Op struct {
	Kind   OpKind
	Amount int
}

// Ops generates n operations with amounts in [1, maxAmount].
// Locks only once per call.
func (r *RNG) Ops(n, maxAmount int) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make([]Op, n)
	for i := range ops {
		ops[i] = Op{
			Kind:   OpKind(r.rand.Intn(2)),
			Amount: 1 + r.rand.Intn(maxAmount),
		}
	}
	return ops
}

// SplitOps distributes ops round-robin over the given number of workers.
func SplitOps(ops []Op, workers int) [][]Op {
	if workers <= 0 {
		workers = 1
	}
	out := make([][]Op, workers)
	for i, op := range ops {
		out[i%workers] = append(out[i%workers], op)
	}
	return out
}
