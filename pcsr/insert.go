package pcsr

import "runtime"

// insertionInfo is the plan produced by acquireInsertLocks so the apply step
// does not have to repeat the window computation.
type insertionInfo struct {
	slideRight  bool // false means slide left, freeing slot b-1
	firstEmpty  int  // the null slot the slide consumes; equals b for a direct write
	redistStart int  // aligned window start, valid when redistLen > 0
	redistLen   int  // window length to redistribute, 0 when the leaf band holds
	doubleList  bool
	duplicate   bool
}

// lockSpan tracks the leaf write locks held by an operation, in acquisition
// order, so they can be released in reverse.
type lockSpan struct {
	order  []int
	lo, hi int
}

func newLockSpan(lf int) *lockSpan {
	return &lockSpan{order: []int{lf}, lo: lf, hi: lf}
}

func (s *lockSpan) push(lf int) {
	s.order = append(s.order, lf)
	if lf < s.lo {
		s.lo = lf
	}
	if lf > s.hi {
		s.hi = lf
	}
}

// markDirty bumps the version counter of every held leaf to an odd value
// right before the first mutation. Optimistic readers treat an odd or
// changed version as interference. releaseLocks bumps the counters back to
// even, so a counter is odd exactly while its leaf is being modified.
func (p *PCSR) markDirty(span *lockSpan) {
	for _, lf := range span.order {
		p.list.leafVers[lf].Add(1)
	}
}

// releaseLocks drops every leaf lock in reverse acquisition order. When the
// operation modified its leaves (inc, paired with a markDirty call), the
// version counter of every held leaf is bumped back to even first.
func (p *PCSR) releaseLocks(span *lockSpan, inc bool) {
	for k := len(span.order) - 1; k >= 0; k-- {
		lf := span.order[k]
		if inc {
			p.list.leafVers[lf].Add(1)
		}
		p.list.leafLocks[lf].Unlock()
	}
}

// lockLeafDown try-locks a leaf below the span with a bounded spin. Blocking
// here could deadlock: every thread blocks only toward higher leaf indices.
func (p *PCSR) lockLeafDown(lf int) bool {
	for a := 0; a < lockAttempts; a++ {
		if p.list.leafLocks[lf].TryLock() {
			return true
		}
		runtime.Gosched()
	}
	return false
}

// extendTo grows the locked span to cover the leaves [lfA, lfB]. Upward
// extension blocks; downward extension try-locks and reports failure.
func (p *PCSR) extendTo(span *lockSpan, lfA, lfB int) bool {
	for lf := span.hi + 1; lf <= lfB; lf++ {
		p.list.leafLocks[lf].Lock()
		span.push(lf)
	}
	for lf := span.lo - 1; lf >= lfA; lf-- {
		if !p.lockLeafDown(lf) {
			return false
		}
		span.push(lf)
	}
	return true
}

// AddEdge inserts the real edge (src, dst) with the given presence value.
// Inserting an edge that is already present is a no-op; the stored value is
// not overwritten. value must be non-zero, zero being the null marker.
func (p *PCSR) AddEdge(src, dst, value uint32) error {
	if value == 0 {
		return ErrNullValue
	}
	elem := slot{Src: src, Dst: dst, Value: value}

	for tries := 0; tries < maxInsertTries; tries++ {
		done, escalate, err := p.tryAddEdge(elem)
		if err != nil {
			return err
		}
		if escalate {
			break
		}
		if done {
			return nil
		}
		p.stats.retries.Add(1)
		runtime.Gosched()
	}
	p.stats.escalations.Add(1)
	return p.addEdgeExclusive(elem)
}

// tryAddEdge runs one optimistic round of the insert protocol: locate,
// acquire and validate, apply, commit. done=false with nil error means the
// round lost a race and the caller should retry; escalate means the plan
// reached the root and the caller must take the global write lock.
func (p *PCSR) tryAddEdge(elem slot) (done, escalate bool, err error) {
	p.global.RLock()
	defer p.global.RUnlock()

	if int(elem.Src) >= len(p.nodes) {
		return false, false, &VertexOutOfRangeError{Vertex: elem.Src, Capacity: uint32(len(p.nodes))}
	}
	nd := &p.nodes[elem.Src]
	begin := nd.beginning.Load()
	if begin == maxID {
		return false, false, &VertexOutOfRangeError{Vertex: elem.Src, Capacity: uint32(len(p.nodes))}
	}
	end := nd.end.Load()

	b, match := p.searchRun(int(begin), int(end), elem.Src, elem.Dst, false)
	if match >= 0 {
		return true, false, nil
	}

	l := p.list
	insLeaf := l.leafOf(min(b, l.n-1))
	v0 := l.leafVers[insLeaf].Load()
	leftLeaf := l.leafOf(int(begin))
	leftV := l.leafVers[leftLeaf].Load()

	info, span, ok := p.acquireInsertLocks(b, elem, v0, leftLeaf, leftV)
	if !ok {
		return false, false, nil
	}
	if info.duplicate {
		p.releaseLocks(span, false)
		return true, false, nil
	}
	if info.doubleList {
		p.releaseLocks(span, false)
		return false, true, nil
	}

	p.markDirty(span)
	p.applyInsert(b, elem, info)
	nd.degree.Add(1)
	p.releaseLocks(span, true)
	return true, false, nil
}

// acquireInsertLocks write-locks the leaf containing the boundary b,
// revalidates the boundary against both the preceding and the following
// occupied slot, hunts down the nearest null slot (extending the span as it
// goes) and plans the redistribution window. It returns ok=false after
// releasing everything when the boundary turned stale or a try-lock lost out.
func (p *PCSR) acquireInsertLocks(b int, elem slot, v0 uint64, leftLeaf int, leftV uint64) (insertionInfo, *lockSpan, bool) {
	l := p.list
	insLeaf := l.leafOf(min(b, l.n-1))

	l.leafLocks[insLeaf].Lock()
	span := newLockSpan(insLeaf)

	fail := func() (insertionInfo, *lockSpan, bool) {
		p.releaseLocks(span, false)
		return insertionInfo{}, nil, false
	}

	if l.leafVers[insLeaf].Load() != v0 || l.leafVers[leftLeaf].Load() != leftV {
		return fail()
	}
	if !p.validPredecessor(b, elem, span) {
		return fail()
	}

	info := insertionInfo{slideRight: true, firstEmpty: -1}

	// Rightward pass: write-lock leaves as the scan crosses into them,
	// looking for the first null. The first occupied slot passed revalidates
	// the boundary: it must sort at-or-after elem within the same run, and
	// matching it exactly means a concurrent duplicate.
	validated := false
	for j := b; j < l.n && (info.firstEmpty < 0 || !validated); j++ {
		if lf := l.leafOf(j); lf > span.hi {
			l.leafLocks[lf].Lock()
			span.push(lf)
		}
		s := l.load(j)
		if s.isNull() {
			if info.firstEmpty < 0 {
				info.firstEmpty = j
				if !validated {
					// The successor sits beyond the gap; confirm it with
					// transient shared locks instead of extending the span.
					ok, dup := p.validSuccessor(j+1, elem, span)
					if dup {
						info.duplicate = true
						return info, span, true
					}
					if !ok {
						return fail()
					}
					validated = true
				}
			}
			continue
		}
		if !validated {
			validated = true
			if s.isEdge() {
				if s.Src != elem.Src {
					return fail()
				}
				if s.Dst == elem.Dst {
					info.duplicate = true
					return info, span, true
				}
				if s.Dst < elem.Dst {
					return fail()
				}
			}
		}
	}

	if info.firstEmpty < 0 {
		// Everything to the right is packed; hunt left instead.
		info.slideRight = false
		for j := b - 1; j >= 0; j-- {
			if lf := l.leafOf(j); lf < span.lo {
				if !p.lockLeafDown(lf) {
					return fail()
				}
				span.push(lf)
			}
			if l.load(j).isNull() {
				info.firstEmpty = j
				break
			}
		}
	}
	if info.firstEmpty < 0 {
		info.doubleList = true
		return info, span, true
	}

	// Walk up from the leaf that gains an occupied slot until a window would
	// stay strictly inside its upper density band after the insert.
	length := l.logN
	start := l.leafStart(l.leafOf(info.firstEmpty))
	level := 0
	count := l.countNonNull(start, length)
	for float64(count+1)/float64(length) >= l.upperBound(level) {
		if length == l.n {
			info.doubleList = true
			return info, span, true
		}
		length *= 2
		level++
		start = start &^ (length - 1)
		if !p.extendTo(span, l.leafOf(start), l.leafOf(start+length-1)) {
			p.releaseLocks(span, false)
			return insertionInfo{}, nil, false
		}
		count = l.countNonNull(start, length)
	}
	if length > l.logN {
		info.redistStart = start
		info.redistLen = length
	}
	return info, span, true
}

// tryRLockLeaf share-locks a leaf with a bounded spin. Blocking on a shared
// lock while holding write locks could deadlock against a writer extending
// its span toward ours, so validation reads never wait indefinitely.
func (p *PCSR) tryRLockLeaf(lf int) bool {
	for a := 0; a < lockAttempts; a++ {
		if p.list.leafLocks[lf].TryRLock() {
			return true
		}
		runtime.Gosched()
	}
	return false
}

// validPredecessor checks that the nearest occupied slot left of b is elem's
// sentinel or a smaller edge of the same source, which pins b inside the
// right run at the right spot. Leaves outside the locked span are read under
// transient shared locks so a concurrent redistribution cannot tear the
// scan. Once this holds under the boundary leaf's write lock it keeps
// holding until commit: no slot can cross the boundary without that lock.
func (p *PCSR) validPredecessor(b int, elem slot, span *lockSpan) bool {
	l := p.list
	j := b - 1
	for j >= 0 {
		lf := l.leafOf(j)
		held := lf >= span.lo && lf <= span.hi
		if !held && !p.tryRLockLeaf(lf) {
			return false
		}
		verdict := 0
		for lo := l.leafStart(lf); j >= lo; j-- {
			s := l.load(j)
			if s.isNull() {
				continue
			}
			switch {
			case s.isSentinel() && nodeID(s) == elem.Src:
				verdict = 1
			case s.isEdge() && s.Src == elem.Src && s.Dst < elem.Dst:
				verdict = 1
			default:
				verdict = -1
			}
			break
		}
		if !held {
			l.leafLocks[lf].RUnlock()
		}
		if verdict != 0 {
			return verdict == 1
		}
	}
	return false
}

// validSuccessor confirms that the first occupied slot at or after from does
// not sort before elem. The second result reports an exact duplicate.
func (p *PCSR) validSuccessor(from int, elem slot, span *lockSpan) (bool, bool) {
	l := p.list
	j := from
	for j < l.n {
		lf := l.leafOf(j)
		held := lf >= span.lo && lf <= span.hi
		if !held && !p.tryRLockLeaf(lf) {
			return false, false
		}
		var s slot
		found := false
		for hi := l.leafStart(lf) + l.logN; j < hi; j++ {
			s = l.load(j)
			if !s.isNull() {
				found = true
				break
			}
		}
		if !held {
			l.leafLocks[lf].RUnlock()
		}
		if found {
			if s.isSentinel() {
				return true, false
			}
			if s.Src != elem.Src {
				return false, false
			}
			if s.Dst == elem.Dst {
				return false, true
			}
			return s.Dst > elem.Dst, false
		}
	}
	return true, false
}

// applyInsert performs the planned slide, writes elem, and redistributes the
// planned window. All touched leaves are locked by the caller.
func (p *PCSR) applyInsert(b int, elem slot, info insertionInfo) {
	target := b
	if info.slideRight {
		if info.firstEmpty != b {
			p.slideRight(b, info.firstEmpty)
		}
	} else {
		p.slideLeft(info.firstEmpty, b)
		target = b - 1
	}
	p.list.store(target, elem)
	if info.redistLen > 0 {
		p.redistribute(info.redistStart, info.redistLen)
	}
}

// addEdgeExclusive is the escalation path: the whole structure is taken
// exclusively and the insert runs sequentially, doubling the array if needed.
func (p *PCSR) addEdgeExclusive(elem slot) error {
	p.global.Lock()
	defer p.global.Unlock()

	if int(elem.Src) >= len(p.nodes) {
		return &VertexOutOfRangeError{Vertex: elem.Src, Capacity: uint32(len(p.nodes))}
	}
	nd := &p.nodes[elem.Src]
	begin := nd.beginning.Load()
	if begin == maxID {
		return &VertexOutOfRangeError{Vertex: elem.Src, Capacity: uint32(len(p.nodes))}
	}

	b, match := p.searchRun(int(begin), int(nd.end.Load()), elem.Src, elem.Dst, true)
	if match >= 0 {
		return nil
	}
	p.insertExclusive(b, elem)
	nd.degree.Add(1)
	return nil
}
