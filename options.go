package pcsrgo

// Options configures a Graph.
type Options struct {
	// LockFreeSearch disables shared leaf locks during binary search.
	// Readers then validate against per-leaf version counters and retry on
	// interference.
	LockFreeSearch bool

	// Logger receives structured operation logs. Defaults to a text logger
	// at info level; use NoopLogger to silence.
	Logger *Logger

	// Metrics receives operation timings and outcomes. Defaults to
	// NoopMetricsCollector.
	Metrics MetricsCollector
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	LockFreeSearch: false,
}
