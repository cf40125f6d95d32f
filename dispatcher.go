package threadpool

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// dispatcher is an unbounded FIFO queue consumed by a fixed set of goroutines.
// The work pool is a dispatcher with N workers, the print serializer is one
// with exactly one worker.
type dispatcher struct {
	name    string
	logger  *slog.Logger
	metrics *queueMetrics
	onPanic func(any)
	trace   bool

	mu    sync.Mutex
	cond  *sync.Cond
	tasks *queue.Queue
	stop  bool // guarded by mu

	stopped   atomic.Bool
	workers   int
	workersWG sync.WaitGroup
}

func newDispatcher(name string, workers int, c config) *dispatcher {
	d := &dispatcher{
		name:    name,
		logger:  c.logger.With(slog.String("queue", name)),
		metrics: c.metrics.forQueue(name),
		onPanic: c.onPanic,
		tasks:   queue.New(),
		workers: workers,
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

func (d *dispatcher) start() {
	if d.workers <= 0 {
		return
	}
	d.workersWG.Add(d.workers)
	for i := range d.workers {
		go d.worker(i)
	}
}

func (d *dispatcher) submit(task Task) {
	if task == nil {
		return
	}

	d.mu.Lock()
	d.tasks.Add(task)
	size := d.tasks.Length()
	d.mu.Unlock()

	d.metrics.taskSubmitted(size)
	if d.trace {
		d.logger.Info("task queued", slog.Int("queue_size", size))
	}
	d.cond.Signal()
}

func (d *dispatcher) worker(id int) {
	d.metrics.workerStarted()
	exited := false
	defer func() {
		d.metrics.workerStopped()
		// Only runtime.Goexit inside a task gets here without exited set.
		// Replace the goroutine before Done so Shutdown keeps waiting.
		if !exited {
			d.logger.Warn("task ended its worker goroutine, restarting worker", slog.Int("worker_id", id))
			d.workersWG.Add(1)
			go d.worker(id)
		}
		d.workersWG.Done()
	}()

	for {
		task, ok := d.next()
		if !ok {
			if d.trace {
				d.logger.Info("dispatcher stopping", slog.Int("worker_id", id))
			}
			d.logger.Debug("worker exited", slog.Int("worker_id", id))
			exited = true
			return
		}
		d.run(id, task)
	}
}

// next blocks until a task is available or the dispatcher is stopped and
// drained. The second result is false only in the latter case.
func (d *dispatcher) next() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for !d.stop && d.tasks.Length() == 0 {
		d.cond.Wait()
	}
	if d.trace {
		d.logger.Info("dispatcher woke", slog.Bool("stopped", d.stop), slog.Int("queue_size", d.tasks.Length()))
	}
	if d.stop && d.tasks.Length() == 0 {
		return nil, false
	}

	task := d.tasks.Remove().(Task)
	remaining := d.tasks.Length()
	d.metrics.taskDequeued(remaining)
	if d.trace {
		d.logger.Info("task dequeued", slog.Int("remaining", remaining))
	}
	return task, true
}

// run executes task on the calling worker. A panic is recovered so the worker
// keeps serving the queue.
func (d *dispatcher) run(id int, task Task) {
	start := time.Now()
	defer func() {
		r := recover()
		d.metrics.taskDone(time.Since(start), r != nil)
		if r == nil {
			return
		}
		d.logger.Error("task panicked", slog.Int("worker_id", id), slog.Any("panic", r))
		d.handlePanic(r)
	}()

	task()
}

func (d *dispatcher) handlePanic(r any) {
	if d.onPanic == nil {
		return
	}
	defer func() {
		if hr := recover(); hr != nil {
			d.logger.Error("panic handler panicked", slog.Any("panic", hr))
		}
	}()
	d.onPanic(r)
}

// close sets the stop flag, wakes every worker and waits for all of them to
// drain the queue and exit.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.stop = true
	d.stopped.Store(true)
	d.mu.Unlock()

	d.cond.Broadcast()
	d.workersWG.Wait()
}

func (d *dispatcher) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks.Length()
}
