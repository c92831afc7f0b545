// Package promadapters provides Prometheus-backed implementations of the
// txstore observability contracts.
//
// The MetricsCollector maps the txstore metric calls onto Prometheus
// instruments:
//
//   - RecordDuration -> prometheus.HistogramVec (seconds)
//   - IncrementCounter -> prometheus.CounterVec
//   - RecordValue -> prometheus.GaugeVec
//
// Instruments are created lazily per metric name and registered with the
// configured registerer, so a single collector can serve every middleware in
// a process.
package promadapters
