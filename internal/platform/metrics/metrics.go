package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	StaleResponses  *prometheus.CounterVec
	Submissions     *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

// New creates and registers all metrics on reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causelist_backend_requests_total",
			Help: "Backend calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "causelist_backend_request_duration_seconds",
			Help:    "Latency of backend calls (the backend drives a scraper, so buckets reach into tens of seconds)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causelist_option_cache_lookups_total",
			Help: "Option-list cache lookups by level and result (hit, miss, error)",
		}, []string{"level", "result"}),
		StaleResponses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causelist_stale_responses_total",
			Help: "Option lists discarded because the ancestor selection changed while they were in flight",
		}, []string{"level"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causelist_submissions_total",
			Help: "Cause-list submissions by kind and outcome (ok, invalid, failed)",
		}, []string{"kind", "outcome"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "causelist_active_sessions",
			Help: "UI sessions currently held in memory",
		}),
	}
}

// ObserveBackend records one backend call. Call with time.Now() taken before the call.
func (m *Metrics) ObserveBackend(endpoint, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordCacheLookup(level, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(level, result).Inc()
}

func (m *Metrics) IncrementStale(level string) {
	if m == nil {
		return
	}
	m.StaleResponses.WithLabelValues(level).Inc()
}

func (m *Metrics) RecordSubmission(kind, outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
