// Package metrics exposes Prometheus instrumentation for batch jobs and match requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tastelens"

// Batch item outcomes
const (
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Metrics holds every collector on its own registry so tests and multiple
// instances never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	BatchItems      *prometheus.CounterVec
	MatchRequests   *prometheus.CounterVec
	MatchDuration   prometheus.Histogram
	TriageDecisions *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BatchItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items handled by batch jobs, by job and outcome",
		}, []string{"job", "outcome"}),
		MatchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_requests_total",
			Help:      "Match requests, by result",
		}, []string{"result"}),
		MatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "End-to-end match latency including tagging",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		TriageDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_decisions_total",
			Help:      "Triage actions taken by users",
		}, []string{"action"}),
	}
}

// RecordBatchItem counts one batch item outcome
func (m *Metrics) RecordBatchItem(job, outcome string) {
	m.BatchItems.WithLabelValues(job, outcome).Inc()
}

// RecordMatch counts one match request and observes its latency
func (m *Metrics) RecordMatch(err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MatchRequests.WithLabelValues(result).Inc()
	m.MatchDuration.Observe(elapsed.Seconds())
}

// RecordTriage counts one triage action (classify, skip, undo, delete)
func (m *Metrics) RecordTriage(action string) {
	m.TriageDecisions.WithLabelValues(action).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
