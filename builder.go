package pcsrgo

import "log/slog"

// Builder provides a fluent way to configure a Graph.
//
//	g, err := pcsrgo.NewBuilder(1_000_000).
//	    LockFreeSearch().
//	    TextLogger(slog.LevelInfo).
//	    Build()
type Builder struct {
	vertexCount uint32
	opts        Options
}

// NewBuilder starts a builder for a graph with the given vertex capacity.
func NewBuilder(vertexCount uint32) *Builder {
	return &Builder{vertexCount: vertexCount, opts: DefaultOptions}
}

// LockFreeSearch disables shared leaf locks during binary search.
func (b *Builder) LockFreeSearch() *Builder {
	b.opts.LockFreeSearch = true
	return b
}

// Logger sets the logger.
func (b *Builder) Logger(l *Logger) *Builder {
	b.opts.Logger = l
	return b
}

// TextLogger installs a human-readable text logger at the given level.
func (b *Builder) TextLogger(level slog.Level) *Builder {
	b.opts.Logger = NewTextLogger(level)
	return b
}

// JSONLogger installs a JSON logger at the given level.
func (b *Builder) JSONLogger(level slog.Level) *Builder {
	b.opts.Logger = NewJSONLogger(level)
	return b
}

// Metrics sets the metrics collector.
func (b *Builder) Metrics(m MetricsCollector) *Builder {
	b.opts.Metrics = m
	return b
}

// Build creates the graph.
func (b *Builder) Build() (*Graph, error) {
	opts := b.opts
	return New(b.vertexCount, func(o *Options) { *o = opts })
}
