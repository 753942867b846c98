package pcsr

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// distinctEdges generates count distinct edges over the given vertex count,
// shuffled with a fixed seed.
func distinctEdges(count, vertices int, seed int64) []Edge {
	edges := make([]Edge, count)
	for i := range edges {
		edges[i] = Edge{Src: uint32(i % vertices), Dst: uint32(i/vertices + 1), Value: 1}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
	return edges
}

func TestConcurrentBulkInsert(t *testing.T) {
	const workers = 8
	count := 100_000
	vertices := 1024
	if testing.Short() {
		count = 10_000
	}

	for _, mode := range []struct {
		name       string
		lockSearch bool
	}{
		{name: "LockedSearch", lockSearch: true},
		{name: "LockFreeSearch", lockSearch: false},
	} {
		t.Run(mode.name, func(t *testing.T) {
			p := New(uint32(vertices), func(o *Options) { o.LockSearch = mode.lockSearch })
			edges := distinctEdges(count, vertices, 7)

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := w; i < len(edges); i += workers {
						if err := p.AddEdge(edges[i].Src, edges[i].Dst, edges[i].Value); err != nil {
							t.Error(err)
							return
						}
					}
				}(w)
			}
			wg.Wait()

			require.Equal(t, count, p.CountTotalEdges())
			for _, e := range edges {
				if !p.EdgeExists(e.Src, e.Dst) {
					t.Fatalf("edge (%d,%d) missing after concurrent load", e.Src, e.Dst)
				}
			}
			checkInvariants(t, p)
		})
	}
}

func TestConcurrentInsertRemove(t *testing.T) {
	const (
		workers  = 8
		vertices = 256
	)
	count := 20_000
	if testing.Short() {
		count = 4_000
	}

	p := New(vertices)
	edges := distinctEdges(count, vertices, 11)
	keep := edges[: count/2 : count/2]
	churn := edges[count/2:]

	for _, e := range keep {
		require.NoError(t, p.AddEdge(e.Src, e.Dst, e.Value))
	}

	// Half the workers insert the churn set while the other half remove it;
	// removers may win before or after the corresponding insert, so only the
	// keep set is guaranteed afterwards.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			if w%2 == 0 {
				for i := w / 2; i < len(churn); i += workers / 2 {
					assert.NoError(t, p.AddEdge(churn[i].Src, churn[i].Dst, churn[i].Value))
				}
			} else {
				for i := w / 2; i < len(churn); i += workers / 2 {
					assert.NoError(t, p.RemoveEdge(churn[i].Src, churn[i].Dst))
				}
			}
		}(w)
	}
	wg.Wait()

	// Settle the churn set deterministically.
	for _, e := range churn {
		require.NoError(t, p.RemoveEdge(e.Src, e.Dst))
	}

	for _, e := range keep {
		assert.True(t, p.EdgeExists(e.Src, e.Dst), "edge (%d,%d)", e.Src, e.Dst)
	}
	assert.Equal(t, len(keep), p.CountTotalEdges())
	checkInvariants(t, p)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	const vertices = 128
	count := 8_000
	if testing.Short() {
		count = 2_000
	}

	p := New(vertices, func(o *Options) { o.LockSearch = false })
	edges := distinctEdges(count, vertices, 3)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for i := r; ; i += 31 {
				select {
				case <-stop:
					return
				default:
				}
				e := edges[i%len(edges)]
				p.EdgeExists(e.Src, e.Dst)
				for range p.Neighborhood(e.Src) {
				}
			}
		}(r)
	}

	var writers sync.WaitGroup
	for w := 0; w < 4; w++ {
		writers.Add(1)
		go func(w int) {
			defer writers.Done()
			for i := w; i < len(edges); i += 4 {
				assert.NoError(t, p.AddEdge(edges[i].Src, edges[i].Dst, edges[i].Value))
			}
		}(w)
	}
	writers.Wait()
	close(stop)
	wg.Wait()

	assert.Equal(t, count, p.CountTotalEdges())
	checkInvariants(t, p)
}
