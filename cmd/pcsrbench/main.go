// Command pcsrbench bulk-loads a core graph into a PCSR structure and then
// applies a stream of point updates from a worker pool, verifying the result.
//
// Input files may be local paths or s3:// and minio:// URIs; formats are
// detected by suffix (.elog binary, .gz/.lz4 compressed, text otherwise).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pcsrgo"
	minioblob "github.com/hupe1980/pcsrgo/blobstore/minio"
	s3blob "github.com/hupe1980/pcsrgo/blobstore/s3"
	"github.com/hupe1980/pcsrgo/dispatch"
	"github.com/hupe1980/pcsrgo/edgeio"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		threads     = flag.Int("threads", 8, "worker thread count")
		size        = flag.Int("size", 1_000_000, "number of update operations to apply")
		lockFree    = flag.Bool("lock_free", false, "disable shared locks during search")
		insertMode  = flag.Bool("insert", true, "apply updates as insertions")
		deleteMode  = flag.Bool("delete", false, "apply updates as deletions")
		coreGraph   = flag.String("core_graph", "", "bulk-load file (path, s3:// or minio:// URI)")
		updateFile  = flag.String("update_file", "", "update file (path, s3:// or minio:// URI)")
		vertexCount = flag.Uint("vertex_count", 0, "initial vertex capacity (required)")
	)
	flag.Parse()

	logger := pcsrgo.NewTextLogger(slog.LevelInfo)
	ctx := context.Background()

	if *vertexCount == 0 {
		logger.Error("missing required flag -vertex_count")
		return 1
	}

	core, err := loadEdges(ctx, *coreGraph)
	if err != nil {
		logger.Error("reading core graph", "file", *coreGraph, "error", err)
		return 1
	}
	updates, err := loadEdges(ctx, *updateFile)
	if err != nil {
		logger.Error("reading update file", "file", *updateFile, "error", err)
		return 1
	}

	logger.Info("configuration",
		"threads", *threads,
		"vertex_count", *vertexCount,
		"lock_free", *lockFree,
		"core_edges", len(core),
		"updates", len(updates),
	)

	g, err := pcsrgo.New(uint32(*vertexCount), func(o *pcsrgo.Options) {
		o.LockFreeSearch = *lockFree
		o.Logger = logger
	})
	if err != nil {
		logger.Error("creating graph", "error", err)
		return 1
	}

	pool := dispatch.NewPool(g, *threads, func(o *dispatch.Options) {
		o.Logger = logger
	})

	// Core graph load.
	if len(core) > 0 {
		pool.SubmitBulk(core)
		start := time.Now()
		if err := pool.Start(ctx); err != nil {
			logger.Error("starting pool", "error", err)
			return 1
		}
		pool.Stop()
		logger.LogBulkLoad(ctx, len(core), time.Since(start), nil)
	}

	// Update phase.
	applied := updates
	if *size >= 0 && *size < len(applied) {
		applied = applied[:*size]
	}
	if len(applied) > 0 {
		doInsert := *insertMode && !*deleteMode
		for i, e := range applied {
			if doInsert {
				pool.SubmitAdd(i%*threads, e.Src, e.Dst)
			} else {
				pool.SubmitRemove(i%*threads, e.Src, e.Dst)
			}
		}
		start := time.Now()
		if err := pool.Start(ctx); err != nil {
			logger.Error("starting pool", "error", err)
			return 1
		}
		pool.Stop()
		mode := "insert"
		if !doInsert {
			mode = "delete"
		}
		logger.Info("update phase completed",
			"mode", mode,
			"count", len(applied),
			"elapsed", time.Since(start),
			"failed", pool.Failed(),
		)

		if missing := verify(g, core, applied, doInsert); missing > 0 {
			logger.Error("verification failed", "missing", missing)
			return 1
		}
	}

	stats := g.Stats()
	logger.Info("structure",
		"edges", g.CountTotalEdges(),
		"capacity", g.CapN(),
		"bytes", g.Size(),
		"sorted", g.IsSorted(),
		"retries", stats.Retries,
		"escalations", stats.Escalations,
		"redistributions", stats.Redistributions,
		"doublings", stats.Doublings,
		"halvings", stats.Halvings,
	)
	return 0
}

// verify fans membership checks out over the cores: every applied update
// must be present (insert mode) or absent (delete mode), and in insert mode
// every core edge must still be present. It returns the mismatch count.
func verify(g *pcsrgo.Graph, core, applied []edgeio.Edge, inserted bool) int64 {
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))

	var missing atomic.Int64
	count := func(edges []edgeio.Edge, want bool) {
		eg.Go(func() error {
			n := int64(0)
			for _, e := range edges {
				if g.EdgeExists(e.Src, e.Dst) != want {
					n++
				}
			}
			if n > 0 {
				missing.Add(n)
			}
			return nil
		})
	}

	const chunk = 1 << 16
	if inserted {
		for lo := 0; lo < len(core); lo += chunk {
			count(core[lo:min(lo+chunk, len(core))], true)
		}
	}
	for lo := 0; lo < len(applied); lo += chunk {
		count(applied[lo:min(lo+chunk, len(applied))], inserted)
	}
	_ = eg.Wait()
	return missing.Load()
}

// loadEdges reads an edge list from a local path or an object-store URI.
func loadEdges(ctx context.Context, path string) ([]edgeio.Edge, error) {
	switch {
	case path == "":
		return nil, nil
	case strings.HasPrefix(path, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(path, "s3://"), "/")
		if !ok {
			return nil, fmt.Errorf("malformed s3 URI %q", path)
		}
		client, err := s3blob.NewDefaultClient(ctx)
		if err != nil {
			return nil, err
		}
		return edgeio.ReadFromStore(ctx, s3blob.NewStore(client, bucket, ""), key)
	case strings.HasPrefix(path, "minio://"):
		rest := strings.TrimPrefix(path, "minio://")
		endpoint, rest, ok := strings.Cut(rest, "/")
		if !ok {
			return nil, fmt.Errorf("malformed minio URI %q", path)
		}
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok {
			return nil, fmt.Errorf("malformed minio URI %q", path)
		}
		client, err := minioblob.NewClient(endpoint,
			os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"),
			os.Getenv("MINIO_INSECURE") == "")
		if err != nil {
			return nil, err
		}
		return edgeio.ReadFromStore(ctx, minioblob.NewStore(client, bucket, ""), key)
	default:
		return edgeio.ReadEdgeList(path)
	}
}
