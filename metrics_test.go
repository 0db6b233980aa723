package cloudsecurity

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/core"
	"github.com/sap/cloud-security-client-go/validator"
)

func TestNoopMetrics(t *testing.T) {
	// Test that NoopMetrics methods don't panic
	metrics := &NoopMetrics{}

	metrics.IncCounter("test_counter", map[string]string{"tag": "value"})
	metrics.ObserveHistogram("test_histogram", 1.5, map[string]string{"tag": "value"})
	metrics.SetGauge("test_gauge", 2.5, map[string]string{"tag": "value"})
}

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	t.Run("IncCounter", func(t *testing.T) {
		tags := map[string]string{"tag1": "value1", "tag2": "value2"}

		metrics.IncCounter("test_counter", tags)
		metrics.IncCounter("test_counter", tags)

		counter, ok := metrics.counters["test_counter"]
		require.True(t, ok, "Counter should be registered")
		assert.InDelta(t, 2, testutil.ToFloat64(counter.With(tags)), 0)
	})

	t.Run("ObserveHistogram", func(t *testing.T) {
		tags := map[string]string{"tag1": "value1"}

		metrics.ObserveHistogram("test_histogram", 2.5, tags)

		_, ok := metrics.histograms["test_histogram"]
		require.True(t, ok, "Histogram should be registered")
		assert.Equal(t, 1, testutil.CollectAndCount(registry, "test_histogram"))
	})

	t.Run("SetGauge", func(t *testing.T) {
		tags := map[string]string{"tag1": "value1"}

		metrics.SetGauge("test_gauge", 4.5, tags)

		gauge, ok := metrics.gauges["test_gauge"]
		require.True(t, ok, "Gauge should be registered")
		assert.InDelta(t, 4.5, testutil.ToFloat64(gauge.With(tags)), 0)
	})
}

func TestKeys(t *testing.T) {
	result := keys(map[string]string{"key2": "value2", "key1": "value1", "key3": "value3"})
	assert.Equal(t, []string{"key1", "key2", "key3"}, result)
}

func TestMetricsListener(t *testing.T) {
	metrics := NewPrometheusMetrics(prometheus.NewRegistry())
	listener := NewMetricsListener(metrics)

	listener.OnValidationSuccess()
	listener.OnValidationSuccess()
	listener.OnValidationError(validator.Invalid("Jwt expired at 2024-05-01T13:00:00Z, time now: 2024-05-01T14:00:00Z"))

	vec := metrics.counters[MetricValidationsTotal]
	require.NotNil(t, vec)
	assert.InDelta(t, 2, testutil.ToFloat64(vec.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(vec.WithLabelValues(core.ErrorCodeTokenExpired)), 0)
}
