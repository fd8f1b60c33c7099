// Package metrics exposes Prometheus instrumentation for the analysis
// worker and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for job processing.
type Metrics struct {
	registry         *prometheus.Registry
	jobsSubmitted    prometheus.Counter
	jobsCompleted    prometheus.Counter
	jobsFailed       *prometheus.CounterVec
	jobsInFlight     prometheus.Gauge
	analysisDuration prometheus.Histogram
	requestsTotal    prometheus.Counter
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	jobsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clipforge_jobs_submitted_total",
		Help: "Total number of analysis jobs accepted into the queue",
	})
	jobsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clipforge_jobs_completed_total",
		Help: "Total number of analysis jobs that completed successfully",
	})
	jobsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clipforge_jobs_failed_total",
		Help: "Total number of analysis jobs that failed, by reason class",
	}, []string{"reason"})
	jobsInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clipforge_jobs_in_flight",
		Help: "Number of jobs currently processing",
	})
	analysisDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipforge_analysis_duration_seconds",
		Help:    "Wall clock duration of completed analysis runs",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clipforge_http_requests_total",
		Help: "Total number of HTTP API requests received",
	})

	registry.MustRegister(
		jobsSubmitted,
		jobsCompleted,
		jobsFailed,
		jobsInFlight,
		analysisDuration,
		requestsTotal,
	)

	return &Metrics{
		registry:         registry,
		jobsSubmitted:    jobsSubmitted,
		jobsCompleted:    jobsCompleted,
		jobsFailed:       jobsFailed,
		jobsInFlight:     jobsInFlight,
		analysisDuration: analysisDuration,
		requestsTotal:    requestsTotal,
	}
}

// JobSubmitted increments the submission counter.
func (m *Metrics) JobSubmitted() {
	if m == nil {
		return
	}
	m.jobsSubmitted.Inc()
}

// JobStarted marks a job entering processing.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.jobsInFlight.Inc()
}

// JobCompleted records a successful analysis and its duration.
func (m *Metrics) JobCompleted(duration time.Duration) {
	if m == nil {
		return
	}
	m.jobsInFlight.Dec()
	m.jobsCompleted.Inc()
	m.analysisDuration.Observe(duration.Seconds())
}

// JobFailed records a failed analysis under its reason class.
func (m *Metrics) JobFailed(reason string) {
	if m == nil {
		return
	}
	m.jobsInFlight.Dec()
	m.jobsFailed.WithLabelValues(reason).Inc()
}

// IncRequests counts an HTTP API request.
func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
