package pcsr

import "runtime"

// removalInfo is the plan produced by acquireRemoveLocks.
type removalInfo struct {
	redistStart int
	redistLen   int
	halfList    bool
}

// RemoveEdge removes the real edge (src, dst). Removing an edge that is not
// present is a silent no-op.
func (p *PCSR) RemoveEdge(src, dst uint32) error {
	for tries := 0; tries < maxInsertTries; tries++ {
		done, escalate, err := p.tryRemoveEdge(src, dst)
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
	return p.removeEdgeExclusive(src, dst)
}

func (p *PCSR) tryRemoveEdge(src, dst uint32) (done, escalate bool, err error) {
	p.global.RLock()
	defer p.global.RUnlock()

	if int(src) >= len(p.nodes) {
		return false, false, &VertexOutOfRangeError{Vertex: src, Capacity: uint32(len(p.nodes))}
	}
	nd := &p.nodes[src]
	begin := nd.beginning.Load()
	if begin == maxID {
		return true, false, nil
	}
	end := nd.end.Load()

	_, match := p.searchRun(int(begin), int(end), src, dst, false)
	if match < 0 {
		return true, false, nil
	}

	l := p.list
	v0 := l.leafVers[l.leafOf(match)].Load()
	info, span, ok := p.acquireRemoveLocks(match, src, dst, v0)
	if !ok {
		return false, false, nil
	}
	if info.halfList {
		p.releaseLocks(span, false)
		return false, true, nil
	}

	p.markDirty(span)
	l.clear(match)
	if info.redistLen > 0 {
		p.redistribute(info.redistStart, info.redistLen)
	}
	nd.degree.Add(^uint32(0))
	p.releaseLocks(span, true)
	return true, false, nil
}

// acquireRemoveLocks write-locks the leaf holding the matched slot, confirms
// it still holds (src, dst), and plans the window whose density stays above
// its lower band once the slot is nulled.
func (p *PCSR) acquireRemoveLocks(idx int, src, dst uint32, v0 uint64) (removalInfo, *lockSpan, bool) {
	l := p.list
	lf := l.leafOf(idx)

	l.leafLocks[lf].Lock()
	span := newLockSpan(lf)

	s := l.load(idx)
	if l.leafVers[lf].Load() != v0 || !s.isEdge() || s.Src != src || s.Dst != dst {
		p.releaseLocks(span, false)
		return removalInfo{}, nil, false
	}

	var info removalInfo
	length := l.logN
	start := l.leafStart(lf)
	level := 0
	count := l.countNonNull(start, length)
	for float64(count-1)/float64(length) < l.lowerBound(level) {
		if length == l.n {
			if l.n > minCapacity {
				info.halfList = true
				return info, span, true
			}
			break
		}
		length *= 2
		level++
		start = start &^ (length - 1)
		if !p.extendTo(span, l.leafOf(start), l.leafOf(start+length-1)) {
			p.releaseLocks(span, false)
			return removalInfo{}, nil, false
		}
		count = l.countNonNull(start, length)
	}
	if length > l.logN && !info.halfList {
		info.redistStart = start
		info.redistLen = length
	}
	return info, span, true
}

// removeEdgeExclusive is the escalation path: the removal runs sequentially
// under the global write lock, halving the array when the root underflows.
func (p *PCSR) removeEdgeExclusive(src, dst uint32) error {
	p.global.Lock()
	defer p.global.Unlock()

	if int(src) >= len(p.nodes) {
		return &VertexOutOfRangeError{Vertex: src, Capacity: uint32(len(p.nodes))}
	}
	nd := &p.nodes[src]
	begin := nd.beginning.Load()
	if begin == maxID {
		return nil
	}

	_, match := p.searchRun(int(begin), int(nd.end.Load()), src, dst, true)
	if match < 0 {
		return nil
	}

	l := p.list
	l.clear(match)
	nd.degree.Add(^uint32(0))

	length := l.logN
	start := l.leafStart(l.leafOf(match))
	level := 0
	count := l.countNonNull(start, length)
	for float64(count)/float64(length) < l.lowerBound(level) {
		if length == l.n {
			if l.n > minCapacity {
				p.halfList()
			}
			return nil
		}
		length *= 2
		level++
		start = start &^ (length - 1)
		count = l.countNonNull(start, length)
	}
	if length > l.logN {
		p.redistribute(start, length)
	}
	return nil
}
