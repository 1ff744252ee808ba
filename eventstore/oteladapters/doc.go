// Package oteladapters implements the journal and handler observability interfaces on top of OpenTelemetry.
//
// MetricsCollector maps durations to histograms, increments to counters and values to gauges.
// TracingCollector opens real OTel spans. SlogBridgeLogger routes slog records through the
// otelslog bridge so log lines carry the active trace and span IDs.
package oteladapters
