// Package analytics implements graph algorithms over the pcsrgo iteration
// interface: breadth-first search, PageRank, and boolean-weight sparse
// matrix-vector multiplication. The algorithms only consume neighborhoods,
// so they run against a live structure and see a best-effort snapshot.
package analytics

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Unreached marks vertices BFS never visited.
const Unreached = math.MaxUint32

// Graph is the iteration surface the algorithms consume. *pcsrgo.Graph and
// *pcsr.PCSR both satisfy it.
type Graph interface {
	// NodeCount returns the number of vertices.
	NodeCount() int
	// Neighborhood iterates the neighbors of src as (dst, value) pairs in
	// ascending dst order.
	Neighborhood(src uint32) iter.Seq2[uint32, uint32]
}

// BFS returns the hop distance from start to every vertex, with Unreached
// for vertices outside start's component. Frontier and visited sets are
// compressed bitmaps, which keeps wide frontiers on large graphs cheap.
func BFS(g Graph, start uint32) []uint32 {
	n := g.NodeCount()
	dist := make([]uint32, n)
	for i := range dist {
		dist[i] = Unreached
	}
	if int(start) >= n {
		return dist
	}

	visited := roaring.New()
	frontier := roaring.New()
	visited.Add(start)
	frontier.Add(start)
	dist[start] = 0

	for level := uint32(1); !frontier.IsEmpty(); level++ {
		next := roaring.New()
		it := frontier.Iterator()
		for it.HasNext() {
			v := it.Next()
			for dst := range g.Neighborhood(v) {
				if int(dst) >= n || visited.Contains(dst) {
					continue
				}
				visited.Add(dst)
				dist[dst] = level
				next.Add(dst)
			}
		}
		frontier = next
	}
	return dist
}

// PageRank runs iterations rounds of the power method with the given damping
// factor (0.85 is the usual choice) and returns the rank of every vertex.
// Dangling mass is spread uniformly.
func PageRank(g Graph, damping float64, iterations int) []float64 {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}

	outDeg := make([]int, n)
	for v := 0; v < n; v++ {
		for range g.Neighborhood(uint32(v)) {
			outDeg[v]++
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	next := make([]float64, n)
	for round := 0; round < iterations; round++ {
		base := (1.0 - damping) / float64(n)
		dangling := 0.0
		for v := 0; v < n; v++ {
			if outDeg[v] == 0 {
				dangling += rank[v]
			}
			next[v] = base
		}
		spread := damping * dangling / float64(n)
		for v := range next {
			next[v] += spread
		}

		for v := 0; v < n; v++ {
			if outDeg[v] == 0 {
				continue
			}
			share := damping * rank[v] / float64(outDeg[v])
			for dst := range g.Neighborhood(uint32(v)) {
				if int(dst) < n {
					next[dst] += share
				}
			}
		}
		rank, next = next, rank
	}
	return rank
}

// SpMV multiplies the graph's boolean adjacency matrix with v:
// out[src] = sum of value * v[dst] over src's neighbors.
func SpMV(g Graph, v []uint32) []uint32 {
	n := g.NodeCount()
	out := make([]uint32, n)
	for src := 0; src < n; src++ {
		var sum uint32
		for dst, value := range g.Neighborhood(uint32(src)) {
			if int(dst) < len(v) {
				sum += value * v[dst]
			}
		}
		out[src] = sum
	}
	return out
}
