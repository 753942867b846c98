// Package pcsrgo provides a concurrent dynamic graph store for Go, built on
// a Packed Compressed Sparse Row (PCSR) layout.
//
// The graph lives in a single packed array of edge slots with per-vertex
// index entries. Point inserts, removes and membership queries run from many
// goroutines at once; an adaptive rebalancer keeps the array within
// per-window density bands by sliding slots, redistributing windows, or
// doubling and halving the array. The design targets bulk loading of a core
// graph followed by high-rate online updates.
//
// # Quick Start
//
//	g, err := pcsrgo.New(1_000_000)
//	if err != nil {
//	    panic(err)
//	}
//
//	ctx := context.Background()
//	_ = g.AddEdge(ctx, 1, 2)
//	_ = g.AddEdge(ctx, 1, 7)
//
//	for dst := range g.Neighborhood(1) {
//	    fmt.Println(dst) // 2, 7
//	}
//
// Searches take shared leaf locks by default; the optimistic mode validates
// reads against per-leaf version counters instead:
//
//	g, err := pcsrgo.New(n, func(o *pcsrgo.Options) {
//	    o.LockFreeSearch = true
//	})
//
// Bulk loading and the update dispatcher live in the dispatch package, edge
// list file formats (text, binary, compressed) in edgeio, and graph
// algorithms consuming the iteration interface in analytics.
package pcsrgo
