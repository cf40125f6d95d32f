package threadpool

import (
	"io"
	"log/slog"
	"os"
)

type config struct {
	logger       *slog.Logger
	workers      int
	fixedWorkers bool
	cpuCount     func() int
	verbose      bool
	output       io.Writer
	metrics      *Metrics
	onPanic      func(any)
}

func defaultConfig() config {
	return config{
		logger:   slog.New(slog.DiscardHandler),
		cpuCount: HardwareConcurrency,
		output:   os.Stdout,
	}
}

// workerCount resolves the work pool size. Without WithWorkers it falls back
// to the CPU count, never less than 1.
func (c config) workerCount() int {
	if c.fixedWorkers {
		return c.workers
	}
	if n := c.cpuCount(); n > 0 {
		return n
	}
	return 1
}

// WithWorkers fixes the number of work pool goroutines. Zero yields a pool
// that never runs submitted tasks; negative values are treated as zero.
func WithWorkers(n int) func(*config) {
	return func(c *config) {
		c.workers = max(n, 0)
		c.fixedWorkers = true
	}
}

// WithCPUCount replaces the function used to size the pool when WithWorkers
// is not given.
func WithCPUCount(fn func() int) func(*config) {
	return func(c *config) {
		if fn != nil {
			c.cpuCount = fn
		}
	}
}

func WithLogger(l *slog.Logger) func(*config) {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithVerbose makes the print serializer log every enqueue, wakeup and
// dequeue at info level.
func WithVerbose(v bool) func(*config) {
	return func(c *config) { c.verbose = v }
}

// WithOutput sets the writer used by Printf and Println. Defaults to os.Stdout.
func WithOutput(w io.Writer) func(*config) {
	return func(c *config) { c.output = w }
}

func WithMetrics(m *Metrics) func(*config) {
	return func(c *config) { c.metrics = m }
}

// WithPanicHandler is called with the recovered value whenever a task panics.
// It runs on the worker goroutine that executed the task. A panic raised by
// the handler itself is recovered and logged.
func WithPanicHandler(fn func(any)) func(*config) {
	return func(c *config) { c.onPanic = fn }
}
