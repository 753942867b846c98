package pcsr

import "sync/atomic"

// Stats tracks protocol-level counters. All fields are updated atomically
// and may be read while operations are in flight.
type Stats struct {
	retries         atomic.Int64
	escalations     atomic.Int64
	redistributions atomic.Int64
	doublings       atomic.Int64
	halvings        atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the protocol counters.
type StatsSnapshot struct {
	// Retries counts optimistic rounds that lost a validation race.
	Retries int64
	// Escalations counts operations that fell back to the global write lock.
	Escalations int64
	// Redistributions counts window repacks.
	Redistributions int64
	// Doublings and Halvings count whole-array resizes.
	Doublings int64
	Halvings  int64
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Retries:         s.retries.Load(),
		Escalations:     s.escalations.Load(),
		Redistributions: s.redistributions.Load(),
		Doublings:       s.doublings.Load(),
		Halvings:        s.halvings.Load(),
	}
}
