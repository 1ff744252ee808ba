package instrument

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/softlib/loantracker/eventstore"
)

const (
	MetricQueryDuration        = "eventstore_query_duration_seconds"
	MetricAppendDuration       = "eventstore_append_duration_seconds"
	MetricEventsQueried        = "eventstore_events_queried_total"
	MetricEventsAppended       = "eventstore_events_appended_total"
	MetricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	MetricErrors               = "eventstore_errors_total"

	SpanNameQuery  = "eventstore.query"
	SpanNameAppend = "eventstore.append"

	OperationQuery  = "query"
	OperationAppend = "append"

	StatusSuccess = "success"
	StatusError   = "error"

	ErrorTypeBuildQuery    = "build_query"
	ErrorTypeDatabase      = "database"
	ErrorTypeScan          = "row_scan"
	ErrorTypeStorableEvent = "storable_event"
	ErrorTypeRowsAffected  = "rows_affected"
	ErrorTypeConcurrency   = "concurrency_conflict"

	LabelEngine    = "engine"
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	AttrEventCount   = "event_count"
	AttrEventType    = "event_type"
	AttrMaxSequence  = "max_sequence"
	AttrExpectedSeq  = "expected_sequence"
	AttrDurationMS   = "duration_ms"
	AttrError        = "error"
	AttrQuery        = "query"
	AttrRowsAffected = "rows_affected"

	logMsgOperation   = "eventstore operation: "
	logMsgSQLExecuted = "executed sql for: "
)

// Instrumentation bundles the optional observability collaborators of an engine.
// A nil field switches that concern off.
type Instrumentation struct {
	Engine           string
	Logger           eventstore.Logger
	ContextualLogger eventstore.ContextualLogger
	Metrics          eventstore.MetricsCollector
	Tracing          eventstore.TracingCollector
}

// Operation tracks one Query or Append from start to finish.
type Operation struct {
	ins   Instrumentation
	ctx   context.Context
	span  eventstore.SpanContext
	name  string
	start time.Time
}

// Start opens the span for an operation and starts its clock.
func (i Instrumentation) Start(ctx context.Context, operation string, attrs map[string]string) (context.Context, *Operation) {
	op := &Operation{ins: i, ctx: ctx, name: operation, start: time.Now()}

	if i.Tracing != nil {
		spanAttrs := map[string]string{LabelOperation: operation, LabelEngine: i.Engine}
		for k, v := range attrs {
			spanAttrs[k] = v
		}

		spanName := SpanNameQuery
		if operation == OperationAppend {
			spanName = SpanNameAppend
		}

		op.ctx, op.span = i.Tracing.StartSpan(ctx, spanName, spanAttrs)
	}

	return op.ctx, op
}

// Succeeded finishes the operation with the number of events read or written.
func (o *Operation) Succeeded(eventCount int, maxSequence eventstore.MaxSequenceNumberUint) {
	duration := time.Since(o.start)

	durationMetric, countMetric := MetricQueryDuration, MetricEventsQueried
	if o.name == OperationAppend {
		durationMetric, countMetric = MetricAppendDuration, MetricEventsAppended
	}

	o.recordDuration(durationMetric, duration, StatusSuccess)
	o.recordValue(countMetric, float64(eventCount))

	o.finishSpan(StatusSuccess, map[string]string{
		AttrEventCount:  fmt.Sprintf("%d", eventCount),
		AttrMaxSequence: fmt.Sprintf("%d", maxSequence),
		AttrDurationMS:  fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	})

	o.ins.logInfo(o.ctx, logMsgOperation+o.name+" completed",
		AttrEventCount, eventCount,
		AttrDurationMS, ToMilliseconds(duration))
}

// Failed finishes the operation with an error classified by errorType.
func (o *Operation) Failed(message string, errorType string, err error, args ...any) {
	duration := time.Since(o.start)

	durationMetric := MetricQueryDuration
	if o.name == OperationAppend {
		durationMetric = MetricAppendDuration
	}

	o.recordDuration(durationMetric, duration, StatusError)
	o.incrementCounter(MetricErrors, map[string]string{
		LabelEngine:    o.ins.Engine,
		LabelOperation: o.name,
		LabelErrorType: errorType,
	})

	o.finishSpan(StatusError, map[string]string{LabelErrorType: errorType, AttrError: err.Error()})

	o.ins.logError(o.ctx, message, err, args...)
}

// Conflicted finishes an append that lost the optimistic concurrency check.
func (o *Operation) Conflicted(expected eventstore.MaxSequenceNumberUint, eventCount int) {
	duration := time.Since(o.start)

	o.recordDuration(MetricAppendDuration, duration, StatusError)
	o.incrementCounter(MetricConcurrencyConflicts, map[string]string{
		LabelEngine:    o.ins.Engine,
		LabelOperation: o.name,
	})

	o.finishSpan(StatusError, map[string]string{
		LabelErrorType:  ErrorTypeConcurrency,
		AttrExpectedSeq: fmt.Sprintf("%d", expected),
	})

	o.ins.logInfo(o.ctx, logMsgOperation+"concurrency conflict detected",
		AttrExpectedSeq, expected,
		AttrEventCount, eventCount)
}

// LogStatement writes an executed statement at debug level.
func (i Instrumentation) LogStatement(ctx context.Context, action string, statement string, duration time.Duration) {
	args := []any{AttrDurationMS, ToMilliseconds(duration), AttrQuery, statement}

	if i.ContextualLogger != nil {
		i.ContextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	} else if i.Logger != nil {
		i.Logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// LogWarning writes non-fatal problems such as a failing rows.Close.
func (i Instrumentation) LogWarning(ctx context.Context, message string, err error) {
	if i.ContextualLogger != nil {
		i.ContextualLogger.WarnContext(ctx, message, AttrError, err.Error())
	} else if i.Logger != nil {
		i.Logger.Warn(message, AttrError, err.Error())
	}
}

func (i Instrumentation) logInfo(ctx context.Context, message string, args ...any) {
	if i.ContextualLogger != nil {
		i.ContextualLogger.InfoContext(ctx, message, args...)
	} else if i.Logger != nil {
		i.Logger.Info(message, args...)
	}
}

func (i Instrumentation) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{AttrError, err.Error()}, args...)

	if i.ContextualLogger != nil {
		i.ContextualLogger.ErrorContext(ctx, message, allArgs...)
	} else if i.Logger != nil {
		i.Logger.Error(message, allArgs...)
	}
}

func (o *Operation) finishSpan(status string, attrs map[string]string) {
	if o.ins.Tracing == nil || o.span == nil {
		return
	}

	o.ins.Tracing.FinishSpan(o.span, status, attrs)
}

func (o *Operation) recordDuration(metric string, duration time.Duration, status string) {
	if o.ins.Metrics == nil {
		return
	}

	labels := map[string]string{LabelEngine: o.ins.Engine, LabelOperation: o.name, LabelStatus: status}

	if contextual, ok := o.ins.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, metric, duration, labels)
		return
	}

	o.ins.Metrics.RecordDuration(metric, duration, labels)
}

func (o *Operation) recordValue(metric string, value float64) {
	if o.ins.Metrics == nil {
		return
	}

	labels := map[string]string{LabelEngine: o.ins.Engine, LabelOperation: o.name, LabelStatus: StatusSuccess}

	if contextual, ok := o.ins.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(o.ctx, metric, value, labels)
		return
	}

	o.ins.Metrics.RecordValue(metric, value, labels)
}

func (o *Operation) incrementCounter(metric string, labels map[string]string) {
	if o.ins.Metrics == nil {
		return
	}

	if contextual, ok := o.ins.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metric, labels)
		return
	}

	o.ins.Metrics.IncrementCounter(metric, labels)
}

// ToMilliseconds converts a duration to milliseconds rounded to three decimals.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
