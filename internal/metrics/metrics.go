// Package metrics collects and exposes Prometheus metrics for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registers and records the server's counters and histograms.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	authFailures *prometheus.CounterVec
}

// New creates a Metrics set and registers it with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_http_requests_total",
			Help: "Total HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskdeck_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_auth_failures_total",
			Help: "Rejected requests by failure reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.requests, m.duration, m.authFailures)

	return m
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(method string, statusCode int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.duration.Observe(d.Seconds())
}

// AuthFailure records a request rejected by the access guard.
func (m *Metrics) AuthFailure(reason string) {
	m.authFailures.WithLabelValues(reason).Inc()
}

// Handler returns the scrape endpoint handler for the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
