package threadpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by both queues of a Pool.
// Every series carries a "queue" label, "work" or "print".
type Metrics struct {
	submitted *prometheus.CounterVec
	completed *prometheus.CounterVec
	panicked  *prometheus.CounterVec
	depth     *prometheus.GaugeVec
	workers   *prometheus.GaugeVec
	latency   *prometheus.HistogramVec
}

// NewMetrics creates the pool collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"queue"}
	m := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks submitted to the queue",
		}, labels),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks that returned normally",
		}, labels),
		panicked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_panicked_total",
			Help:      "Total number of tasks that panicked",
		}, labels),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of tasks waiting in the queue",
		}, labels),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of live worker goroutines",
		}, labels),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Histogram of task execution time",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}
	reg.MustRegister(
		m.submitted,
		m.completed,
		m.panicked,
		m.depth,
		m.workers,
		m.latency,
	)
	return m
}

type queueMetrics struct {
	submitted prometheus.Counter
	completed prometheus.Counter
	panicked  prometheus.Counter
	depth     prometheus.Gauge
	workers   prometheus.Gauge
	latency   prometheus.Observer
}

func (m *Metrics) forQueue(name string) *queueMetrics {
	if m == nil {
		return nil
	}
	return &queueMetrics{
		submitted: m.submitted.WithLabelValues(name),
		completed: m.completed.WithLabelValues(name),
		panicked:  m.panicked.WithLabelValues(name),
		depth:     m.depth.WithLabelValues(name),
		workers:   m.workers.WithLabelValues(name),
		latency:   m.latency.WithLabelValues(name),
	}
}

func (q *queueMetrics) taskSubmitted(depth int) {
	if q == nil {
		return
	}
	q.submitted.Inc()
	q.depth.Set(float64(depth))
}

func (q *queueMetrics) taskDequeued(depth int) {
	if q == nil {
		return
	}
	q.depth.Set(float64(depth))
}

func (q *queueMetrics) taskDone(d time.Duration, panicked bool) {
	if q == nil {
		return
	}
	q.latency.Observe(d.Seconds())
	if panicked {
		q.panicked.Inc()
		return
	}
	q.completed.Inc()
}

func (q *queueMetrics) workerStarted() {
	if q != nil {
		q.workers.Inc()
	}
}

func (q *queueMetrics) workerStopped() {
	if q != nil {
		q.workers.Dec()
	}
}
