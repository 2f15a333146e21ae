package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/healthcheckify/internal/domain"
)

var statuses = []domain.Status{domain.StatusProcessing, domain.StatusHealthy, domain.StatusDown}

// Metrics holds the Prometheus collectors for probes and the dispatch pool.
// It implements health.Observer.
type Metrics struct {
	registry *prometheus.Registry

	ProbesTotal   *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	TargetStatus  *prometheus.GaugeVec
	PoolPanics    prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthcheck_probes_total",
			Help: "Completed probes by target and verdict",
		}, []string{"target", "status"}),

		ProbeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthcheck_probe_duration_seconds",
			Help:    "Probe round-trip time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"target"}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthcheck_cache_hits_total",
			Help: "Status queries answered without probing",
		}, []string{"target"}),

		TargetStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "healthcheck_target_status",
			Help: "1 for the target's current status, 0 otherwise",
		}, []string{"target", "status"}),

		PoolPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "healthcheck_pool_panics_total",
			Help: "Jobs that panicked inside a pool worker",
		}),
	}

	registry.MustRegister(
		m.ProbesTotal,
		m.ProbeDuration,
		m.CacheHits,
		m.TargetStatus,
		m.PoolPanics,
	)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WatchQueue exports fn as the pool queue depth gauge.
func (m *Metrics) WatchQueue(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "healthcheck_pool_queue_depth",
		Help: "Probe jobs waiting for a worker",
	}, func() float64 { return float64(fn()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ProbeStarted implements health.Observer.
func (m *Metrics) ProbeStarted(id domain.TargetID) {
	m.setStatus(id, domain.StatusProcessing)
}

// ProbeCompleted implements health.Observer.
func (m *Metrics) ProbeCompleted(id domain.TargetID, status domain.Status, latency time.Duration) {
	m.ProbesTotal.WithLabelValues(string(id), status.String()).Inc()
	m.ProbeDuration.WithLabelValues(string(id)).Observe(latency.Seconds())
	m.setStatus(id, status)
}

// CacheHit implements health.Observer.
func (m *Metrics) CacheHit(id domain.TargetID) {
	m.CacheHits.WithLabelValues(string(id)).Inc()
}

// PoolPanicked is meant for pool.WithPanicHook.
func (m *Metrics) PoolPanicked(any) {
	m.PoolPanics.Inc()
}

func (m *Metrics) setStatus(id domain.TargetID, current domain.Status) {
	for _, s := range statuses {
		v := 0.0
		if s == current {
			v = 1.0
		}
		m.TargetStatus.WithLabelValues(string(id), s.String()).Set(v)
	}
}
