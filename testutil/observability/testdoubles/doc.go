// Package testdoubles provides spies for the observability interfaces of the eventstore
// and the library shell:
//   - MetricsCollectorSpy records durations, counters and values
//   - TracingCollectorSpy records started and finished spans
//   - ContextualLoggerSpy records leveled log calls with their attributes
//
// All spies are safe for concurrent use.
package testdoubles
