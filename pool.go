package threadpool

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const (
	workQueue  = "work"
	printQueue = "print"
)

// Task is a unit of work. It captures whatever state it needs.
type Task func()

// Runner is implemented by values that can be submitted as a task.
type Runner interface {
	Run()
}

// Pool runs tasks on a fixed set of worker goroutines and owns a second,
// single-goroutine queue that serializes output.
//
// The caller must call Shutdown (or Close) exactly once when done; defer
// pool.Close() or use Run. Submitting after Shutdown has started is a caller
// error: the task is queued but never executed.
type Pool struct {
	logger *slog.Logger
	out    io.Writer

	work    *dispatcher
	printer *dispatcher

	shutdownOnce sync.Once
}

var _ io.Closer = (*Pool)(nil)

// New starts a pool. Without WithWorkers the work pool is sized to the
// hardware concurrency. The print serializer is started by every call to New,
// including New() with no options, so SubmitPrint always has a consumer and
// Shutdown can drain both queues.
func New(opts ...func(*config)) *Pool {
	c := defaultConfig()

	for _, o := range opts {
		o(&c)
	}

	p := &Pool{
		logger:  c.logger,
		out:     c.output,
		work:    newDispatcher(workQueue, c.workerCount(), c),
		printer: newDispatcher(printQueue, 1, c),
	}
	p.printer.trace = c.verbose

	p.logger.Info("thread pool starting", slog.Int("workers", p.work.workers), slog.Bool("verbose", c.verbose))
	p.work.start()
	p.printer.start()

	return p
}

// Run creates a pool, passes it to fn and shuts it down once fn returns or
// panics.
func Run(fn func(p *Pool) error, opts ...func(*config)) error {
	p := New(opts...)
	defer p.Shutdown()
	return fn(p)
}

// Submit queues task for the work pool. It never blocks on capacity.
func (p *Pool) Submit(task Task) {
	p.work.submit(task)
}

func (p *Pool) SubmitRunner(r Runner) {
	if r == nil {
		return
	}
	p.work.submit(r.Run)
}

// SubmitPrint queues task for the print serializer. Print tasks run one at a
// time in submission order.
func (p *Pool) SubmitPrint(task Task) {
	p.printer.submit(task)
}

// Printf formats immediately and writes the result from the print serializer.
func (p *Pool) Printf(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	p.printer.submit(func() { _, _ = io.WriteString(p.out, s) })
}

func (p *Pool) Println(args ...any) {
	s := fmt.Sprintln(args...)
	p.printer.submit(func() { _, _ = io.WriteString(p.out, s) })
}

// Shutdown drains the work queue and waits for its workers, then drains the
// print queue and waits for the print serializer. Print tasks submitted by
// work tasks during the drain are therefore still executed. Only the first
// call does anything; concurrent calls block until it completes.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(p.shutdown)
}

func (p *Pool) shutdown() {
	p.logger.Info("thread pool shutting down", slog.Int("pending", p.work.pending()))
	p.work.close()
	p.logger.Info("work pool drained", slog.Int("pending_prints", p.printer.pending()))
	p.printer.close()
	p.logger.Info("thread pool shutdown completed")
}

// Close calls Shutdown. It always returns nil.
func (p *Pool) Close() error {
	p.Shutdown()
	return nil
}

// WorkerCount returns the number of work pool goroutines.
func (p *Pool) WorkerCount() int {
	return p.work.workers
}

// Pending returns the number of tasks waiting in the work queue.
func (p *Pool) Pending() int {
	return p.work.pending()
}

// PendingPrints returns the number of tasks waiting in the print queue.
func (p *Pool) PendingPrints() int {
	return p.printer.pending()
}

// Stopped reports whether Shutdown has begun.
func (p *Pool) Stopped() bool {
	return p.work.stopped.Load()
}
