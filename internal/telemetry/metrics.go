// Package telemetry holds the Prometheus collectors of the service.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "secretsanta"

// Metrics groups the draw and HTTP collectors. It satisfies app.DrawObserver.
type Metrics struct {
	// DrawsTotal counts finished draws by outcome.
	// Labels: outcome (assigned, already_drawn, exhausted, conflict, error)
	DrawsTotal *prometheus.CounterVec

	// DrawDurationSeconds measures a draw including its retries.
	DrawDurationSeconds prometheus.Histogram

	// DrawConflictsTotal counts lost compare-and-swap writes.
	DrawConflictsTotal prometheus.Counter

	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDurationSeconds measures request latency by route.
	HTTPRequestDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DrawsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "draw",
				Name:      "total",
				Help:      "Total draws by outcome",
			},
			[]string{"outcome"},
		),
		DrawDurationSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "draw",
				Name:      "duration_seconds",
				Help:      "Draw latency including conflict retries",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		DrawConflictsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "draw",
				Name:      "conflicts_total",
				Help:      "Assignment writes lost to a concurrent draw",
			},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// ObserveDraw records a finished draw.
func (m *Metrics) ObserveDraw(outcome string, elapsed time.Duration) {
	m.DrawsTotal.WithLabelValues(outcome).Inc()
	m.DrawDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveConflict records a lost write.
func (m *Metrics) ObserveConflict() {
	m.DrawConflictsTotal.Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
}
