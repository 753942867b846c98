package pcsr

import "iter"

// Neighborhood iterates the real edges of src as (dst, value) pairs in
// ascending dst order. The run is snapshotted leaf by leaf under shared
// locks before yielding, so the callback runs without any lock held.
func (p *PCSR) Neighborhood(src uint32) iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		for _, e := range p.neighborhoodSnapshot(src) {
			if !yield(e.Dst, e.Value) {
				return
			}
		}
	}
}

func (p *PCSR) neighborhoodSnapshot(src uint32) []Edge {
	p.global.RLock()
	defer p.global.RUnlock()

	if int(src) >= len(p.nodes) {
		return nil
	}
	nd := &p.nodes[src]
	begin := nd.beginning.Load()
	if begin == maxID {
		return nil
	}
	end := int(nd.end.Load())

	l := p.list
	out := make([]Edge, 0, nd.degree.Load())
	for lf := l.leafOf(int(begin)); lf <= l.leafOf(end-1) && lf < len(l.leafLocks); lf++ {
		lo := max(int(begin), l.leafStart(lf))
		hi := min(end, l.leafStart(lf)+l.logN)
		l.leafLocks[lf].RLock()
		for i := lo; i < hi; i++ {
			if s := l.load(i); s.isEdge() && s.Src == src {
				out = append(out, Edge{Src: s.Src, Dst: s.Dst, Value: s.Value})
			}
		}
		l.leafLocks[lf].RUnlock()
	}
	return out
}

// Edges iterates every real edge in packed-array order, which is ascending
// (src, dst) order for a quiescent structure. The array is snapshotted leaf
// by leaf under shared locks.
func (p *PCSR) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		p.global.RLock()
		l := p.list
		out := make([]Edge, 0, l.n/4)
		for lf := 0; lf < len(l.leafLocks); lf++ {
			start := l.leafStart(lf)
			l.leafLocks[lf].RLock()
			for i := start; i < start+l.logN; i++ {
				if s := l.load(i); s.isEdge() {
					out = append(out, Edge{Src: s.Src, Dst: s.Dst, Value: s.Value})
				}
			}
			l.leafLocks[lf].RUnlock()
		}
		p.global.RUnlock()

		for _, e := range out {
			if !yield(e) {
				return
			}
		}
	}
}

// IsSorted reports whether every vertex run holds its real edges in strictly
// ascending dst order. It is meaningful on a quiescent structure.
func (p *PCSR) IsSorted() bool {
	p.global.RLock()
	defer p.global.RUnlock()

	l := p.list
	var (
		cur     uint32
		haveRun bool
		last    uint32
		haveDst bool
	)
	for i := 0; i < l.n; i++ {
		s := l.load(i)
		switch {
		case s.isNull():
		case s.isSentinel():
			if haveRun && nodeID(s) <= cur {
				return false
			}
			cur = nodeID(s)
			haveRun = true
			haveDst = false
		default:
			if !haveRun || s.Src != cur {
				return false
			}
			if haveDst && s.Dst <= last {
				return false
			}
			last = s.Dst
			haveDst = true
		}
	}
	return true
}

// CountTotalEdges returns the number of real edges in the structure.
func (p *PCSR) CountTotalEdges() int {
	p.global.RLock()
	defer p.global.RUnlock()

	c := 0
	l := p.list
	for i := 0; i < l.n; i++ {
		if l.load(i).isEdge() {
			c++
		}
	}
	return c
}
