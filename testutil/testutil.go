// Package testutil provides deterministic generators for graph workloads
// used across the test suites.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/pcsrgo/edgeio"
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

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// DistinctEdges generates num distinct edges over the given vertex count and
// shuffles them. Destinations start at 1, so the pairs stay distinct for any
// num and vertices.
func (r *RNG) DistinctEdges(num, vertices int) []edgeio.Edge {
	edges := make([]edgeio.Edge, num)
	for i := range edges {
		edges[i] = edgeio.Edge{Src: uint32(i % vertices), Dst: uint32(i/vertices + 1)}
	}
	r.Shuffle(edges)
	return edges
}

// Shuffle permutes the edge slice in place.
func (r *RNG) Shuffle(edges []edgeio.Edge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(edges), func(i, j int) {
		edges[i], edges[j] = edges[j], edges[i]
	})
}
