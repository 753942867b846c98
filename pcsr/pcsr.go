// Package pcsr implements a concurrent Packed Compressed Sparse Row graph.
//
// The graph is kept in a single packed array of edge slots partitioned into
// fixed-size leaves. An implicit complete binary tree over the leaves defines
// density bands per level; point inserts and removes keep every window inside
// its band by sliding slots locally, redistributing windows, or doubling and
// halving the whole array. Many goroutines may mutate and search the
// structure concurrently: a global reader-writer lock is held shared by every
// operation and exclusively only for doubling, halving, vertex creation and
// operations that exhausted their optimistic retry budget, while per-leaf reader-writer locks plus per-leaf version counters serialize
// conflicting point operations and let optimistic readers detect interference.
package pcsr

import (
	"math"
	"sync"
	"sync/atomic"
)

const (
	// maxID marks sentinel destinations and deleted vertex descriptors.
	maxID = math.MaxUint32

	// minCapacity is the smallest slot capacity the edge list shrinks to.
	minCapacity = 16

	// maxInsertTries bounds optimistic retries before an operation escalates
	// to the global write lock.
	maxInsertTries = 100

	// lockAttempts bounds try-lock spins when a plan has to extend its
	// window toward lower leaf indices.
	lockAttempts = 32
)

// slot is one position of the packed edge array. A slot with Value == 0 is
// null padding. A slot with Dst == maxID is the sentinel that opens a
// vertex's run: Src holds the vertex id and Value the descriptor index
// (maxID stands in for vertex 0, whose index would otherwise read as null).
// Anything else is a real edge.
type slot struct {
	Src   uint32
	Dst   uint32
	Value uint32
}

func (s slot) isNull() bool     { return s.Value == 0 }
func (s slot) isSentinel() bool { return s.Dst == maxID }
func (s slot) isEdge() bool     { return !s.isNull() && !s.isSentinel() }

// sentinelFor encodes the sentinel slot for vertex v.
func sentinelFor(v uint32) slot {
	val := v
	if v == 0 {
		val = maxID
	}
	return slot{Src: v, Dst: maxID, Value: val}
}

// nodeID decodes the vertex id stored in a sentinel slot.
func nodeID(s slot) uint32 {
	if s.Value == maxID {
		return 0
	}
	return s.Value
}

// slotCell is the shared storage for one slot. Fields are accessed through
// atomics so the optimistic search mode is a well-defined seqlock: readers
// load the leaf version, read the fields, and re-check the version.
type slotCell struct {
	src   atomic.Uint32
	dst   atomic.Uint32
	value atomic.Uint32
}

// vertexDesc locates a vertex's run inside the packed array. beginning is the
// index of the vertex's sentinel (maxID once the vertex is deleted), end is
// the exclusive end of the run and equals the next vertex's sentinel index
// (the last run extends to the array capacity), and degree counts real edges
// with this vertex as source.
type vertexDesc struct {
	beginning atomic.Uint32
	end       atomic.Uint32
	degree    atomic.Uint32
}

// Edge is a materialized real edge, as produced by Edges.
type Edge struct {
	Src   uint32
	Dst   uint32
	Value uint32
}

// Options configures a PCSR instance.
type Options struct {
	// LockSearch makes binary searches take the shared lock of every leaf
	// they touch. When false, searches read slots optimistically and rely on
	// leaf version counters to detect interference.
	LockSearch bool
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	LockSearch: true,
}

// PCSR is a concurrent packed compressed sparse row graph.
type PCSR struct {
	global sync.RWMutex

	// list and nodes are replaced or appended to only under the exclusive
	// global lock; every other access holds it shared.
	list  *edgeList
	nodes []vertexDesc

	lockSearch bool

	stats Stats
}

// New creates a PCSR with vertexCount pre-declared vertices (ids
// 0..vertexCount-1), each with its sentinel already in place.
func New(vertexCount uint32, optFns ...func(o *Options)) *PCSR {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	p := &PCSR{
		list:       newEdgeList(capacityFor(vertexCount)),
		nodes:      make([]vertexDesc, 0, vertexCount),
		lockSearch: opts.LockSearch,
	}
	for i := uint32(0); i < vertexCount; i++ {
		p.appendNode()
	}
	return p
}

// capacityFor sizes the initial slot array for the declared vertex count:
// twice the next power of two above it, so the sentinels land inside the
// root density band without an immediate doubling.
func capacityFor(vertexCount uint32) int {
	n := 2 * nextPow2(int(vertexCount)+1)
	if n < minCapacity {
		n = minCapacity
	}
	return n
}

func nextPow2(v int) int {
	n := 1
	for n < v {
		n <<= 1
	}
	return n
}

// AddNode appends a new vertex and inserts its sentinel after the last run.
// It returns the new vertex id.
func (p *PCSR) AddNode() uint32 {
	p.global.Lock()
	defer p.global.Unlock()
	return p.appendNode()
}

// appendNode requires the exclusive global lock (or a not-yet-shared PCSR).
func (p *PCSR) appendNode() uint32 {
	v := uint32(len(p.nodes))
	p.nodes = append(p.nodes, vertexDesc{})
	nd := &p.nodes[v]
	nd.beginning.Store(uint32(p.list.n) - 1) // fixed up by the insert below
	nd.end.Store(uint32(p.list.n))

	// The sentinel goes after every non-null slot already present.
	b := p.list.n
	for b > 0 && p.list.load(b-1).isNull() {
		b--
	}
	p.insertExclusive(b, sentinelFor(v))
	return v
}

// NodeCount returns the number of vertices, including deleted ones.
func (p *PCSR) NodeCount() int {
	p.global.RLock()
	defer p.global.RUnlock()
	return len(p.nodes)
}

// Degree returns the number of real edges with src as source.
func (p *PCSR) Degree(src uint32) (uint32, error) {
	p.global.RLock()
	defer p.global.RUnlock()
	if int(src) >= len(p.nodes) {
		return 0, &VertexOutOfRangeError{Vertex: src, Capacity: uint32(len(p.nodes))}
	}
	return p.nodes[src].degree.Load(), nil
}

// CapN returns the current slot capacity of the packed array.
func (p *PCSR) CapN() int {
	p.global.RLock()
	defer p.global.RUnlock()
	return p.list.n
}

// Size returns the approximate in-memory footprint of the structure in bytes.
func (p *PCSR) Size() uint64 {
	p.global.RLock()
	defer p.global.RUnlock()
	slots := uint64(p.list.n) * 12
	descs := uint64(len(p.nodes)) * 12
	leaves := uint64(len(p.list.leafVers)) * (8 + 24)
	return slots + descs + leaves
}

// Stats returns a snapshot of internal protocol counters.
func (p *PCSR) Stats() StatsSnapshot {
	return p.stats.snapshot()
}
