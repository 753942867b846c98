package pcsrgo_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/pcsrgo"
)

func Example() {
	g, err := pcsrgo.New(4, func(o *pcsrgo.Options) {
		o.Logger = pcsrgo.NoopLogger()
	})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	_ = g.AddEdge(ctx, 0, 2)
	_ = g.AddEdge(ctx, 0, 1)
	_ = g.AddEdge(ctx, 2, 3)

	for dst := range g.Neighborhood(0) {
		fmt.Println(dst)
	}
	fmt.Println(g.EdgeExists(2, 3))

	// Output:
	// 1
	// 2
	// true
}
