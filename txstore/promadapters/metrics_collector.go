package promadapters

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/statekit/transactional-store-go/txstore"
)

// MetricsCollector implements txstore.MetricsCollector on top of Prometheus.
//
// Prometheus requires the label names of an instrument to be fixed at
// registration time, while the txstore contract passes free-form label maps.
// The collector therefore fixes the label set of each metric on its first
// observation; later calls for the same metric must carry the same label keys
// or the observation is dropped. The collector never fails a notification
// path, registration and label mismatches are swallowed.
type MetricsCollector struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewMetricsCollector creates a Prometheus metrics collector registering its
// instruments with the given registerer. Pass prometheus.DefaultRegisterer to
// expose the metrics through the default /metrics handler.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &MetricsCollector{
		registerer: registerer,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// RecordDuration records a duration observation in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	histogramVec := m.histogram(metric, labelKeys(labels))
	if histogramVec == nil {
		return
	}

	observer, err := histogramVec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}

	observer.Observe(duration.Seconds())
}

// IncrementCounter increments a counter by one.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	counterVec := m.counter(metric, labelKeys(labels))
	if counterVec == nil {
		return
	}

	counter, err := counterVec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}

	counter.Inc()
}

// RecordValue sets a gauge to the given value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	gaugeVec := m.gauge(metric, labelKeys(labels))
	if gaugeVec == nil {
		return
	}

	gauge, err := gaugeVec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}

	gauge.Set(value)
}

func (m *MetricsCollector) histogram(name string, keys []string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogramVec, exists := m.histograms[name]; exists {
		return histogramVec
	}

	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    "transactional store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		keys,
	)

	registered, ok := m.register(histogramVec)
	if !ok {
		return nil
	}

	histogramVec, _ = registered.(*prometheus.HistogramVec)
	m.histograms[name] = histogramVec

	return histogramVec
}

func (m *MetricsCollector) counter(name string, keys []string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counterVec, exists := m.counters[name]; exists {
		return counterVec
	}

	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: "transactional store operation counter",
		},
		keys,
	)

	registered, ok := m.register(counterVec)
	if !ok {
		return nil
	}

	counterVec, _ = registered.(*prometheus.CounterVec)
	m.counters[name] = counterVec

	return counterVec
}

func (m *MetricsCollector) gauge(name string, keys []string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gaugeVec, exists := m.gauges[name]; exists {
		return gaugeVec
	}

	gaugeVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: "transactional store current value",
		},
		keys,
	)

	registered, ok := m.register(gaugeVec)
	if !ok {
		return nil
	}

	gaugeVec, _ = registered.(*prometheus.GaugeVec)
	m.gauges[name] = gaugeVec

	return gaugeVec
}

// register registers a collector, adopting an already registered duplicate
// when another component created the same instrument first.
func (m *MetricsCollector) register(collector prometheus.Collector) (prometheus.Collector, bool) {
	err := m.registerer.Register(collector)
	if err == nil {
		return collector, true
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector, true
	}

	return nil, false
}

// labelKeys returns the sorted label names of a label map, fixing the label
// schema of the instrument.
func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Ensure MetricsCollector implements txstore.MetricsCollector.
var _ txstore.MetricsCollector = (*MetricsCollector)(nil)
