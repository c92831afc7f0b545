// Package oteladapters provides OpenTelemetry adapters for the txstore
// observability interfaces, for users who want plug-and-play observability
// without implementing the interfaces themselves.
//
// Available adapters:
//   - SlogBridgeLogger: txstore.ContextualLogger via the OTel slog bridge
//   - OTelLogger: txstore.ContextualLogger via the OTel log API directly
//   - MetricsCollector: txstore.MetricsCollector via the OTel metrics API
//   - TracingCollector: txstore.TracingCollector via the OTel trace API
package oteladapters
