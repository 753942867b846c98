// Package dispatch drives a pcsrgo graph with a pool of workers. Each worker
// owns a private task queue of point updates; a bulk edge sequence can be
// handed to the pool and is partitioned round-robin across the workers for
// the core-graph load phase.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/pcsrgo"
	"github.com/hupe1980/pcsrgo/edgeio"
	"golang.org/x/time/rate"
)

// Op selects what a task does to its edge.
type Op uint8

const (
	// OpAdd inserts the edge.
	OpAdd Op = iota
	// OpRemove removes the edge.
	OpRemove
	// OpRead iterates the neighborhood of Src; Dst is ignored.
	OpRead
)

// Task is one queued operation.
type Task struct {
	Op  Op
	Src uint32
	Dst uint32
}

// ErrRunning is returned when the pool is started while workers are live.
var ErrRunning = errors.New("dispatch: pool already running")

// Options configures a Pool.
type Options struct {
	// Logger receives progress and failure logs. Defaults to a noop logger.
	Logger *pcsrgo.Logger

	// ProgressInterval limits how often bulk-load progress is logged.
	// Defaults to once per second; zero disables progress logs entirely.
	ProgressInterval rate.Limit
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	ProgressInterval: rate.Limit(1),
}

// Pool dispatches tasks to a fixed set of workers, each draining its own
// queue. Submissions are allowed before and between runs; Start launches the
// workers and Stop lets them drain cooperatively before joining.
type Pool struct {
	graph   *pcsrgo.Graph
	workers int
	queues  []*taskQueue
	logger  *pcsrgo.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	bulk    []edgeio.Edge
	running bool
	wg      sync.WaitGroup

	loaded atomic.Int64
	failed atomic.Int64
}

// NewPool creates a pool of the given size over the graph.
func NewPool(graph *pcsrgo.Graph, workers int, optFns ...func(o *Options)) *Pool {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = pcsrgo.NoopLogger()
	}
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		graph:   graph,
		workers: workers,
		queues:  make([]*taskQueue, workers),
		logger:  opts.Logger,
	}
	if opts.ProgressInterval > 0 {
		p.limiter = rate.NewLimiter(opts.ProgressInterval, 1)
	}
	for i := range p.queues {
		p.queues[i] = newTaskQueue()
	}
	return p
}

// SubmitAdd queues an insert of (src, dst) on the given worker.
func (p *Pool) SubmitAdd(worker int, src, dst uint32) {
	p.queues[worker%p.workers].push(Task{Op: OpAdd, Src: src, Dst: dst})
}

// SubmitRemove queues a removal of (src, dst) on the given worker.
func (p *Pool) SubmitRemove(worker int, src, dst uint32) {
	p.queues[worker%p.workers].push(Task{Op: OpRemove, Src: src, Dst: dst})
}

// SubmitRead queues a neighborhood read of src on the given worker.
func (p *Pool) SubmitRead(worker int, src uint32) {
	p.queues[worker%p.workers].push(Task{Op: OpRead, Src: src})
}

// SubmitBulk hands an edge sequence to the pool. On the next Start every
// worker t processes the indices congruent to t modulo the worker count. The
// sequence is released again when Stop returns.
func (p *Pool) SubmitBulk(edges []edgeio.Edge) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bulk = edges
}

// Start launches the workers. Each processes its share of any bulk sequence
// first, then drains its task queue until Stop is called.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrRunning
	}
	p.running = true
	bulk := p.bulk
	p.mu.Unlock()

	p.loaded.Store(0)
	for _, q := range p.queues {
		q.reset()
	}

	p.wg.Add(p.workers)
	for w := 0; w < p.workers; w++ {
		go p.run(ctx, w, bulk)
	}
	return nil
}

// Stop signals the workers to finish, waits for every queue to drain, and
// releases the bulk sequence.
func (p *Pool) Stop() {
	for _, q := range p.queues {
		q.finish()
	}
	p.wg.Wait()

	p.mu.Lock()
	p.bulk = nil
	p.running = false
	p.mu.Unlock()
}

// Failed returns the number of tasks that ended in an error.
func (p *Pool) Failed() int64 { return p.failed.Load() }

func (p *Pool) run(ctx context.Context, id int, bulk []edgeio.Edge) {
	defer p.wg.Done()

	for i := id; i < len(bulk); i += p.workers {
		if err := p.graph.AddEdge(ctx, bulk[i].Src, bulk[i].Dst); err != nil {
			p.failed.Add(1)
		}
		if n := p.loaded.Add(1); p.limiter != nil && p.limiter.Allow() {
			p.logger.InfoContext(ctx, "bulk load progress",
				"loaded", n,
				"total", len(bulk),
			)
		}
	}

	q := p.queues[id]
	for {
		t, ok := q.pop()
		if !ok {
			return
		}
		p.dispatch(ctx, t)
	}
}

func (p *Pool) dispatch(ctx context.Context, t Task) {
	switch t.Op {
	case OpAdd:
		if err := p.graph.AddEdge(ctx, t.Src, t.Dst); err != nil {
			p.failed.Add(1)
		}
	case OpRemove:
		if err := p.graph.RemoveEdge(ctx, t.Src, t.Dst); err != nil {
			p.failed.Add(1)
		}
	case OpRead:
		for range p.graph.Neighborhood(t.Src) {
		}
	}
}

// taskQueue is a private FIFO drained by exactly one worker. finish wakes
// the worker so it can drain the remainder and exit.
type taskQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	tasks    []Task
	finished bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *taskQueue) push(t Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until a task is available or the queue is finished and empty.
func (q *taskQueue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.tasks) == 0 && !q.finished {
		q.cond.Wait()
	}
	if len(q.tasks) == 0 {
		return Task{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

func (q *taskQueue) finish() {
	q.mu.Lock()
	q.finished = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *taskQueue) reset() {
	q.mu.Lock()
	q.finished = false
	q.mu.Unlock()
}
