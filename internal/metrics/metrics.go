// Package metrics exposes Prometheus metrics for classification, probing and
// the HTTP API. Metrics live on a private registry so several instances can
// coexist in one process.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linksift"

// Metrics holds all linksift collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Classification
	LinksClassified *prometheus.CounterVec

	// Probing
	Probes         *prometheus.CounterVec
	ProbeDuration  *prometheus.HistogramVec
	ProbesInflight prometheus.Gauge

	// HTTP API
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	HTTPInflightRequests       prometheus.Gauge
}

// New creates the collectors on a fresh registry. Go runtime and process
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		LinksClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_classified_total",
			Help:      "Unique links assigned to each category.",
		}, []string{"category"}),
		Probes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Liveness probes by platform and verdict.",
		}, []string{"platform", "verdict"}),
		ProbeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Liveness probe latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		}, []string{"platform"}),
		ProbesInflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probes_inflight",
			Help:      "Probes currently waiting on the network.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distributions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInflightRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Classified counts n links assigned to category.
func (m *Metrics) Classified(category string, n int) {
	m.LinksClassified.WithLabelValues(category).Add(float64(n))
}

// ProbeStarted marks a probe as in flight.
func (m *Metrics) ProbeStarted(string) {
	m.ProbesInflight.Inc()
}

// ProbeFinished records a probe verdict and its latency.
func (m *Metrics) ProbeFinished(platform string, alive bool, d time.Duration) {
	m.ProbesInflight.Dec()

	if platform == "" {
		platform = "unknown"
	}

	verdict := "dead"
	if alive {
		verdict = "alive"
	}

	m.Probes.WithLabelValues(platform, verdict).Inc()
	m.ProbeDuration.WithLabelValues(platform).Observe(d.Seconds())
}
