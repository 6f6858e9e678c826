// Package metrics holds the Prometheus collectors for upstream calls and polling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	polls    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherflow",
			Name:      "api_requests_total",
			Help:      "Requests sent to the WeatherFlow API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherflow",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of WeatherFlow API requests, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherflow",
			Name:      "polls_total",
			Help:      "Polling cycles by result (ok, offline, not_found, error).",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.latency, m.polls)
	return m
}

// ObserveRequest records one upstream request.
func (m *Metrics) ObserveRequest(endpoint, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.latency.WithLabelValues(endpoint).Observe(took.Seconds())
}

// ObservePoll records the result of one polling cycle.
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
}
