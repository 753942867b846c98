package analytics

import (
	"context"
	"testing"

	"github.com/hupe1980/pcsrgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph loads a small directed graph:
//
//	0 -> 1 -> 2 -> 3
//	0 -> 2        3 -> 0
//	4 (isolated)
func buildGraph(t *testing.T) *pcsrgo.Graph {
	t.Helper()
	g, err := pcsrgo.New(5, func(o *pcsrgo.Options) {
		o.Logger = pcsrgo.NoopLogger()
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, e := range [][2]uint32{{0, 1}, {0, 2}, {1, 2}, {2, 3}, {3, 0}} {
		require.NoError(t, g.AddEdge(ctx, e[0], e[1]))
	}
	return g
}

func TestBFS(t *testing.T) {
	g := buildGraph(t)

	dist := BFS(g, 0)
	assert.Equal(t, []uint32{0, 1, 1, 2, Unreached}, dist)

	dist = BFS(g, 3)
	assert.Equal(t, []uint32{1, 2, 2, 0, Unreached}, dist)

	dist = BFS(g, 4)
	assert.Equal(t, []uint32{Unreached, Unreached, Unreached, Unreached, 0}, dist)
}

func TestPageRank(t *testing.T) {
	g := buildGraph(t)

	rank := PageRank(g, 0.85, 50)
	require.Len(t, rank, 5)

	// Ranks form a probability distribution.
	sum := 0.0
	for _, r := range rank {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Vertex 2 has two in-links (from 0 and 1) and must outrank the
	// isolated vertex 4.
	assert.Greater(t, rank[2], rank[4])
	assert.Greater(t, rank[3], rank[4])
}

func TestSpMV(t *testing.T) {
	g := buildGraph(t)

	// With the all-ones vector, SpMV yields the out-degrees.
	out := SpMV(g, []uint32{1, 1, 1, 1, 1})
	assert.Equal(t, []uint32{2, 1, 1, 1, 0}, out)

	out = SpMV(g, []uint32{10, 20, 30, 40, 50})
	assert.Equal(t, []uint32{50, 30, 40, 10, 0}, out)
}
