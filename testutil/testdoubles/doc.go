// Package testdoubles provides test doubles (spies) for the txstore
// observability interfaces:
//   - LoggerSpy: captures log records for verification
//   - MetricsCollectorSpy: captures metric recording calls
//   - TracingCollectorSpy: captures span lifecycles
//   - FixedClock: a manually advanced clock source
//
// These doubles enable testing of middleware instrumentation without a real
// logging, metrics, or tracing backend.
package testdoubles
