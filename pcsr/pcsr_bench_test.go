package pcsr

import (
	"sync/atomic"
	"testing"
)

func BenchmarkAddEdge(b *testing.B) {
	const vertices = 1024
	p := New(vertices)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.AddEdge(uint32(i%vertices), uint32(i/vertices+1), 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAddEdgeParallel(b *testing.B) {
	const vertices = 1024
	p := New(vertices)

	var next atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := next.Add(1) - 1
			if err := p.AddEdge(uint32(i%vertices), uint32(i/vertices+1), 1); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkEdgeExists(b *testing.B) {
	const (
		vertices = 1024
		edges    = 1 << 16
	)
	for _, mode := range []struct {
		name       string
		lockSearch bool
	}{
		{name: "LockedSearch", lockSearch: true},
		{name: "LockFreeSearch", lockSearch: false},
	} {
		b.Run(mode.name, func(b *testing.B) {
			p := New(vertices, func(o *Options) { o.LockSearch = mode.lockSearch })
			for i := 0; i < edges; i++ {
				if err := p.AddEdge(uint32(i%vertices), uint32(i/vertices+1), 1); err != nil {
					b.Fatal(err)
				}
			}

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					p.EdgeExists(uint32(i%vertices), uint32(i/vertices+1))
					i++
				}
			})
		})
	}
}
