package pcsr

import (
	"sync"
	"sync/atomic"
)

// edgeList is the packed slot array together with its leaf-level
// synchronization state. The whole value is swapped out under the exclusive
// global lock when the array doubles or halves.
type edgeList struct {
	n    int // slot capacity, power of two
	logN int // leaf size in slots, power of two
	h    int // height of the implicit tree over leaves

	cells     []slotCell
	leafLocks []sync.RWMutex
	leafVers  []atomic.Uint64
}

func newEdgeList(n int) *edgeList {
	l := &edgeList{n: n}
	l.logN = leafSizeFor(n)
	l.h = log2(n / l.logN)
	l.cells = make([]slotCell, n)
	leaves := n / l.logN
	l.leafLocks = make([]sync.RWMutex, leaves)
	l.leafVers = make([]atomic.Uint64, leaves)
	return l
}

// leafSizeFor returns the leaf size for capacity n: the largest power of two
// not exceeding log2(n)+1 slots, so that it always divides n.
func leafSizeFor(n int) int {
	return 1 << log2(log2(n)+1)
}

func log2(v int) int {
	b := 0
	for v > 1 {
		v >>= 1
		b++
	}
	return b
}

func (l *edgeList) leafOf(i int) int { return i / l.logN }

func (l *edgeList) leafStart(lf int) int { return lf * l.logN }

func (l *edgeList) load(i int) slot {
	c := &l.cells[i]
	return slot{Src: c.src.Load(), Dst: c.dst.Load(), Value: c.value.Load()}
}

func (l *edgeList) store(i int, s slot) {
	c := &l.cells[i]
	c.src.Store(s.Src)
	c.dst.Store(s.Dst)
	c.value.Store(s.Value)
}

func (l *edgeList) clear(i int) {
	c := &l.cells[i]
	c.value.Store(0)
	c.src.Store(0)
	c.dst.Store(0)
}

// countNonNull counts the occupied slots in [start, start+length). The caller
// must hold locks covering the range, or the exclusive global lock.
func (l *edgeList) countNonNull(start, length int) int {
	c := 0
	for i := start; i < start+length; i++ {
		if l.cells[i].value.Load() != 0 {
			c++
		}
	}
	return c
}

// Density bands. Level 0 is a leaf, level h is the root. The root band is
// [1/4, 1/2]; the leaf band is [1/8, 1]; levels interpolate linearly.

func (l *edgeList) upperBound(level int) float64 {
	if l.h == 0 {
		return 0.5
	}
	return 1.0 - 0.5*float64(level)/float64(l.h)
}

func (l *edgeList) lowerBound(level int) float64 {
	if l.h == 0 {
		return 0.25
	}
	return 0.125 + 0.125*float64(level)/float64(l.h)
}

// fixSentinel records that vertex v's sentinel now lives at index in. The
// previous vertex's run ends where this one begins; the last run always ends
// at the array capacity.
func (p *PCSR) fixSentinel(v uint32, in int) {
	p.nodes[v].beginning.Store(uint32(in))
	if v > 0 {
		p.nodes[v-1].end.Store(uint32(in))
	}
}

// slideRight shifts the slots in [i, e) one position to the right, where e is
// a null slot. Sentinel back-references are fixed as they move. The caller
// must hold write locks covering [i, e] and leaves slot i null.
func (p *PCSR) slideRight(i, e int) {
	l := p.list
	for j := e; j > i; j-- {
		s := l.load(j - 1)
		l.store(j, s)
		if s.isSentinel() {
			p.fixSentinel(nodeID(s), j)
		}
	}
	l.clear(i)
}

// slideLeft shifts the slots in (e, i) one position to the left, where e is a
// null slot left of i, freeing slot i-1. The caller must hold write locks
// covering [e, i).
func (p *PCSR) slideLeft(e, i int) {
	l := p.list
	for j := e; j < i-1; j++ {
		s := l.load(j + 1)
		l.store(j, s)
		if s.isSentinel() {
			p.fixSentinel(nodeID(s), j)
		}
	}
	l.clear(i - 1)
}

// redistribute repacks the window [start, start+length) so that occupied
// slots are evenly spaced, preserving order and fixing sentinel
// back-references. The caller must hold write locks for every leaf of the
// window, or the exclusive global lock.
func (p *PCSR) redistribute(start, length int) {
	p.stats.redistributions.Add(1)
	l := p.list

	buf := make([]slot, 0, length)
	for i := start; i < start+length; i++ {
		s := l.load(i)
		if !s.isNull() {
			buf = append(buf, s)
		}
		l.clear(i)
	}
	c := len(buf)
	if c == 0 {
		return
	}

	// Integer stride with remainder carry keeps the spread even without
	// floating point drift.
	step, rem := length/c, length%c
	pos, acc := start, 0
	for _, s := range buf {
		l.store(pos, s)
		if s.isSentinel() {
			p.fixSentinel(nodeID(s), pos)
		}
		pos += step
		acc += rem
		if acc >= c {
			pos++
			acc -= c
		}
	}
}

// doubleList grows the array to twice its capacity and repacks it at even
// density. Requires the exclusive global lock.
func (p *PCSR) doubleList() {
	p.resize(p.list.n * 2)
	p.stats.doublings.Add(1)
}

// halfList shrinks the array to half its capacity. Requires the exclusive
// global lock; the caller has checked that the contents fit the root band.
func (p *PCSR) halfList() {
	p.resize(p.list.n / 2)
	p.stats.halvings.Add(1)
}

func (p *PCSR) resize(newN int) {
	old := p.list
	buf := make([]slot, 0, old.countNonNull(0, old.n))
	for i := 0; i < old.n; i++ {
		if s := old.load(i); !s.isNull() {
			buf = append(buf, s)
		}
	}

	nl := newEdgeList(newN)
	p.list = nl
	c := len(buf)
	if c > 0 {
		step, rem := newN/c, newN%c
		pos, acc := 0, 0
		for _, s := range buf {
			nl.store(pos, s)
			if s.isSentinel() {
				p.fixSentinel(nodeID(s), pos)
			}
			pos += step
			acc += rem
			if acc >= c {
				pos++
				acc -= c
			}
		}
	}
	if len(p.nodes) > 0 {
		p.nodes[len(p.nodes)-1].end.Store(uint32(newN))
	}
}

// insertExclusive places elem at boundary position b using the sequential
// path: direct write into a null slot, or a slide toward the nearest gap,
// followed by the density walk. Requires the exclusive global lock (or a
// not-yet-shared PCSR). b may equal the capacity, meaning "after everything".
func (p *PCSR) insertExclusive(b int, elem slot) {
	l := p.list
	target := b
	gain := b // index whose leaf gains an occupied slot
	if b == l.n || !l.load(b).isNull() {
		if e := p.findEmptyRight(b); e >= 0 {
			p.slideRight(b, e)
			gain = e
		} else if e := p.findEmptyLeft(b - 1); e >= 0 {
			p.slideLeft(e, b)
			target = b - 1
			gain = e
		} else {
			p.doubleList()
			p.insertExclusive(p.searchBoundaryExclusive(elem), elem)
			return
		}
	}

	l.store(target, elem)
	if elem.isSentinel() {
		p.fixSentinel(nodeID(elem), target)
	}

	// Density walk: find the smallest window around the leaf that gained a
	// slot that stays strictly below its upper band and redistribute it;
	// double when even the root would not.
	lf := l.leafOf(gain)
	length := l.logN
	start := l.leafStart(lf)
	level := 0
	count := l.countNonNull(start, length)
	for float64(count)/float64(length) >= l.upperBound(level) {
		if length == l.n {
			p.doubleList()
			return
		}
		length *= 2
		level++
		start = start &^ (length - 1)
		count = l.countNonNull(start, length)
	}
	if length > l.logN {
		p.redistribute(start, length)
	}
}

// searchBoundaryExclusive relocates the insertion boundary for elem after a
// structural change, using plain reads.
func (p *PCSR) searchBoundaryExclusive(elem slot) int {
	if elem.isSentinel() {
		b := p.list.n
		for b > 0 && p.list.load(b-1).isNull() {
			b--
		}
		return b
	}
	nd := &p.nodes[elem.Src]
	b, _ := p.searchRun(int(nd.beginning.Load()), int(nd.end.Load()), elem.Src, elem.Dst, true)
	return b
}

func (p *PCSR) findEmptyRight(from int) int {
	l := p.list
	for j := from; j < l.n; j++ {
		if l.load(j).isNull() {
			return j
		}
	}
	return -1
}

func (p *PCSR) findEmptyLeft(from int) int {
	l := p.list
	for j := from; j >= 0; j-- {
		if l.load(j).isNull() {
			return j
		}
	}
	return -1
}
