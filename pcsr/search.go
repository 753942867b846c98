package pcsr

// searchRunWith binary-searches the run [begin, end) whose sentinel sits at
// begin for the insertion boundary of dst: the smallest index such that every
// occupied slot before it has a smaller destination and every occupied slot
// at or after it has a greater-or-equal one. Nulls are skipped by linear
// probing. The second result is the index of an exact (src, dst) match, or -1.
func (p *PCSR) searchRunWith(begin, end int, src, dst uint32, load func(int) slot) (int, int) {
	lo, hi := begin+1, end
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		j := mid
		var s slot
		for j < hi {
			s = load(j)
			if !s.isNull() {
				break
			}
			j++
		}
		if j == hi || s.Dst >= dst {
			hi = mid
		} else {
			lo = j + 1
		}
	}

	match := -1
	for j := lo; j < end; j++ {
		s := load(j)
		if s.isNull() {
			continue
		}
		if s.isEdge() && s.Src == src && s.Dst == dst {
			match = j
		}
		break
	}
	return lo, match
}

// searchRun runs searchRunWith in the mode the structure was configured for.
// exclusive skips leaf locking for callers that hold the global write lock.
func (p *PCSR) searchRun(begin, end int, src, dst uint32, exclusive bool) (int, int) {
	if exclusive || !p.lockSearch {
		return p.searchRunWith(begin, end, src, dst, p.list.load)
	}
	return p.searchRunWith(begin, end, src, dst, p.loadShared)
}

// loadShared reads a slot under its leaf's shared lock.
func (p *PCSR) loadShared(i int) slot {
	lf := p.list.leafOf(i)
	p.list.leafLocks[lf].RLock()
	s := p.list.load(i)
	p.list.leafLocks[lf].RUnlock()
	return s
}

// verTracker records the version of every leaf a lock-free search touches so
// the result can be confirmed afterwards.
type verTracker struct {
	list   *edgeList
	leaves []int
	vers   []uint64
}

func (t *verTracker) load(i int) slot {
	lf := t.list.leafOf(i)
	seen := false
	for _, l := range t.leaves {
		if l == lf {
			seen = true
			break
		}
	}
	if !seen {
		t.leaves = append(t.leaves, lf)
		t.vers = append(t.vers, t.list.leafVers[lf].Load())
	}
	return t.list.load(i)
}

// valid reports whether none of the touched leaves changed since first read.
// An odd version means a writer was mid-mutation, so the read is discarded
// even if the counter still matches.
func (t *verTracker) valid() bool {
	for k, lf := range t.leaves {
		if t.vers[k]&1 == 1 || t.list.leafVers[lf].Load() != t.vers[k] {
			return false
		}
	}
	return true
}

// EdgeExists reports whether the real edge (src, dst) is present.
func (p *PCSR) EdgeExists(src, dst uint32) bool {
	p.global.RLock()
	defer p.global.RUnlock()

	if int(src) >= len(p.nodes) {
		return false
	}
	nd := &p.nodes[src]

	if !p.lockSearch {
		// Optimistic mode: re-run the search until the version counters of
		// every touched leaf confirm an interference-free read.
		for try := 0; try < maxInsertTries; try++ {
			begin := nd.beginning.Load()
			if begin == maxID {
				return false
			}
			end := nd.end.Load()
			t := &verTracker{list: p.list}
			_, match := p.searchRunWith(int(begin), int(end), src, dst, t.load)
			if t.valid() {
				return match >= 0
			}
			p.stats.retries.Add(1)
		}
	}

	begin := nd.beginning.Load()
	if begin == maxID {
		return false
	}
	_, match := p.searchRunWith(int(begin), int(nd.end.Load()), src, dst, p.loadShared)
	return match >= 0
}
