package promadapters_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statekit/transactional-store-go/txstore/promadapters"
)

func newTestCollector(t *testing.T) (*prometheus.Registry, *promadapters.MetricsCollector) {
	t.Helper()

	registry := prometheus.NewRegistry()

	return registry, promadapters.NewMetricsCollector(registry)
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	registry, collector := newTestCollector(t)

	collector.IncrementCounter("store_transactions_started_total", map[string]string{"action": "AddItem"})
	collector.IncrementCounter("store_transactions_started_total", map[string]string{"action": "AddItem"})
	collector.IncrementCounter("store_transactions_started_total", map[string]string{"action": "Checkout"})

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	family := families[0]
	assert.Equal(t, "store_transactions_started_total", family.GetName())
	require.Len(t, family.GetMetric(), 2)

	counts := map[string]float64{}
	for _, metric := range family.GetMetric() {
		require.Len(t, metric.GetLabel(), 1)
		counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}

	assert.Equal(t, 2.0, counts["AddItem"])
	assert.Equal(t, 1.0, counts["Checkout"])
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	registry, collector := newTestCollector(t)

	collector.RecordDuration(
		"store_transaction_duration_seconds",
		250*time.Millisecond,
		map[string]string{"action": "AddItem"},
	)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	family := families[0]
	require.Len(t, family.GetMetric(), 1)

	histogram := family.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), histogram.GetSampleCount())
	assert.InDelta(t, 0.25, histogram.GetSampleSum(), 0.001, "durations are recorded in seconds")
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	registry, collector := newTestCollector(t)

	collector.RecordValue("store_transactions_in_flight", 3, nil)
	collector.RecordValue("store_transactions_in_flight", 1, nil)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, 1.0, families[0].GetMetric()[0].GetGauge().GetValue(), "the gauge keeps the most recent value")
}

func Test_MetricsCollector_MismatchedLabelSet_IsDropped(t *testing.T) {
	registry, collector := newTestCollector(t)

	collector.IncrementCounter("mismatched_total", map[string]string{"action": "AddItem"})
	collector.IncrementCounter("mismatched_total", map[string]string{"status": "completed"})

	count := testutil.CollectAndCount(registry, "mismatched_total")
	assert.Equal(t, 1, count, "the second call uses different label keys and is dropped")
}

func Test_MetricsCollector_AdoptsAlreadyRegisteredInstrument(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)

	first.IncrementCounter("shared_total", map[string]string{"action": "AddItem"})
	second.IncrementCounter("shared_total", map[string]string{"action": "AddItem"})

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func Test_NewMetricsCollector_NilRegisterer_UsesDefault(t *testing.T) {
	collector := promadapters.NewMetricsCollector(nil)
	require.NotNil(t, collector)

	assert.NotPanics(t, func() {
		collector.RecordValue("promadapters_default_registerer_probe", 1, nil)
	})
}
