package pcsrgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, vertices uint32, optFns ...func(o *Options)) *Graph {
	t.Helper()
	optFns = append([]func(o *Options){func(o *Options) { o.Logger = NoopLogger() }}, optFns...)
	g, err := New(vertices, optFns...)
	require.NoError(t, err)
	return g
}

func TestGraphBasics(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, 4)

	require.NoError(t, g.AddEdge(ctx, 0, 1))
	require.NoError(t, g.AddEdge(ctx, 0, 2))
	require.NoError(t, g.AddEdge(ctx, 0, 2)) // duplicate no-op

	assert.True(t, g.EdgeExists(0, 1))
	assert.False(t, g.EdgeExists(1, 0))
	assert.Equal(t, 2, g.CountTotalEdges())

	deg, err := g.Degree(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), deg)

	require.NoError(t, g.RemoveEdge(ctx, 0, 1))
	assert.False(t, g.EdgeExists(0, 1))
	assert.Equal(t, 1, g.CountTotalEdges())
	assert.True(t, g.IsSorted())
}

func TestGraphErrorTranslation(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, 2)

	err := g.AddEdge(ctx, 7, 0)
	var oor *ErrVertexOutOfRange
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, uint32(7), oor.Vertex)
	assert.Equal(t, uint32(2), oor.Capacity)
}

func TestGraphContextCancelled(t *testing.T) {
	g := newTestGraph(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, g.AddEdge(ctx, 0, 1), context.Canceled)
	assert.ErrorIs(t, g.RemoveEdge(ctx, 0, 1), context.Canceled)
	assert.Equal(t, 0, g.CountTotalEdges())
}

func TestGraphMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	g := newTestGraph(t, 4, func(o *Options) { o.Metrics = metrics })

	require.NoError(t, g.AddEdge(ctx, 0, 1))
	require.NoError(t, g.RemoveEdge(ctx, 0, 1))
	g.EdgeExists(0, 1)

	assert.Equal(t, int64(1), metrics.InsertCount.Load())
	assert.Equal(t, int64(1), metrics.RemoveCount.Load())
	assert.Equal(t, int64(1), metrics.ExistsCount.Load())
	assert.Equal(t, int64(0), metrics.ExistsHits.Load())
}

func TestBuilder(t *testing.T) {
	g, err := NewBuilder(8).
		LockFreeSearch().
		Logger(NoopLogger()).
		Metrics(&BasicMetricsCollector{}).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, g.AddEdge(ctx, 3, 4))
	assert.True(t, g.EdgeExists(3, 4))
}

func TestGraphIteration(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, 4)
	for _, e := range [][2]uint32{{0, 1}, {0, 3}, {2, 1}} {
		require.NoError(t, g.AddEdge(ctx, e[0], e[1]))
	}

	var dsts []uint32
	for dst := range g.Neighborhood(0) {
		dsts = append(dsts, dst)
	}
	assert.Equal(t, []uint32{1, 3}, dsts)

	count := 0
	for range g.Edges() {
		count++
	}
	assert.Equal(t, 3, count)
}
