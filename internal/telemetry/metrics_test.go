package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDraw(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveDraw("assigned", 3*time.Millisecond)
	m.ObserveDraw("assigned", time.Millisecond)
	m.ObserveDraw("exhausted", time.Millisecond)
	m.ObserveConflict()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DrawsTotal.WithLabelValues("assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DrawsTotal.WithLabelValues("exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DrawConflictsTotal))
}

func TestObserveHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveHTTP("POST", "/api/draw", 200, 10*time.Millisecond)
	m.ObserveHTTP("POST", "/api/draw", 409, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/draw", "409")))

	n, err := testutil.GatherAndCount(reg, "secretsanta_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
