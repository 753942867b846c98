package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinctEdges(t *testing.T) {
	rng := NewRNG(1)
	edges := rng.DistinctEdges(1000, 7)
	require.Len(t, edges, 1000)

	seen := make(map[[2]uint32]bool, len(edges))
	for _, e := range edges {
		key := [2]uint32{e.Src, e.Dst}
		assert.False(t, seen[key], "duplicate edge (%d,%d)", e.Src, e.Dst)
		seen[key] = true
		assert.Less(t, e.Src, uint32(7))
		assert.GreaterOrEqual(t, e.Dst, uint32(1))
	}
}

func TestDeterminism(t *testing.T) {
	a := NewRNG(42).DistinctEdges(100, 5)
	b := NewRNG(42).DistinctEdges(100, 5)
	assert.Equal(t, a, b)
}
