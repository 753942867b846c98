package pcsrgo

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/pcsrgo/pcsr"
)

// Graph is the public handle on a concurrent PCSR graph. It wraps the core
// structure with logging, metrics and error translation. All methods are
// safe for concurrent use.
type Graph struct {
	core    *pcsr.PCSR
	logger  *Logger
	metrics MetricsCollector
}

// New creates a graph with vertexCount pre-declared vertices (ids
// 0..vertexCount-1).
func New(vertexCount uint32, optFns ...func(o *Options)) (*Graph, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NewLogger(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}

	core := pcsr.New(vertexCount, func(o *pcsr.Options) {
		o.LockSearch = !opts.LockFreeSearch
	})

	return &Graph{
		core:    core,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Core exposes the underlying PCSR for collaborators that drive it directly,
// such as the dispatch worker pool.
func (g *Graph) Core() *pcsr.PCSR { return g.core }

// AddNode appends a new vertex and returns its id.
func (g *Graph) AddNode() uint32 {
	return g.core.AddNode()
}

// AddEdge inserts the edge (src, dst). Edges are unweighted: presence is
// recorded with the fixed marker value 1, and inserting an existing edge is
// a no-op.
func (g *Graph) AddEdge(ctx context.Context, src, dst uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := translateError(g.core.AddEdge(src, dst, 1))
	g.metrics.RecordInsert(time.Since(start), err)
	g.logger.LogInsert(ctx, src, dst, err)
	return err
}

// RemoveEdge removes the edge (src, dst) if present; otherwise it is a
// silent no-op.
func (g *Graph) RemoveEdge(ctx context.Context, src, dst uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := translateError(g.core.RemoveEdge(src, dst))
	g.metrics.RecordRemove(time.Since(start), err)
	g.logger.LogRemove(ctx, src, dst, err)
	return err
}

// EdgeExists reports whether the edge (src, dst) is present.
func (g *Graph) EdgeExists(src, dst uint32) bool {
	start := time.Now()
	found := g.core.EdgeExists(src, dst)
	g.metrics.RecordExists(time.Since(start), found)
	return found
}

// Neighborhood iterates the neighbors of src as (dst, value) pairs in
// ascending dst order.
func (g *Graph) Neighborhood(src uint32) iter.Seq2[uint32, uint32] {
	return g.core.Neighborhood(src)
}

// Edges iterates every edge of the graph.
func (g *Graph) Edges() iter.Seq[pcsr.Edge] {
	return g.core.Edges()
}

// NodeCount returns the number of vertices.
func (g *Graph) NodeCount() int { return g.core.NodeCount() }

// Degree returns the out-degree of src.
func (g *Graph) Degree(src uint32) (uint32, error) {
	deg, err := g.core.Degree(src)
	return deg, translateError(err)
}

// CountTotalEdges returns the number of edges in the graph.
func (g *Graph) CountTotalEdges() int { return g.core.CountTotalEdges() }

// IsSorted reports whether every vertex run is sorted; it is meaningful on a
// quiescent graph.
func (g *Graph) IsSorted() bool { return g.core.IsSorted() }

// CapN returns the slot capacity of the packed edge array.
func (g *Graph) CapN() int { return g.core.CapN() }

// Size returns the approximate memory footprint in bytes.
func (g *Graph) Size() uint64 { return g.core.Size() }

// Stats returns a snapshot of core protocol counters.
func (g *Graph) Stats() pcsr.StatsSnapshot { return g.core.Stats() }
