package postgresengine

import (
	"github.com/softlib/loantracker/eventstore"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the journal table name.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
//
// Debug level receives every SQL statement with its timing, Info level receives event counts
// and concurrency conflicts, Error level receives failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.ins.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, preferred over WithLogger when both are set.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.ins.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.ins.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the EventStore.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.ins.Tracing = collector
		return nil
	}
}
