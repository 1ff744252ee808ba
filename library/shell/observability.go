package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerRejectedMetric tracks commands rejected by a business rule, labeled with the reason.
	CommandHandlerRejectedMetric = "commandhandler_rejected_operations_total"

	// CommandHandlerPersistenceWarningMetric tracks commands whose outcome could not be persisted.
	CommandHandlerPersistenceWarningMetric = "commandhandler_persistence_warnings_total"

	// CommandHandlerCanceledMetric tracks canceled operations.
	CommandHandlerCanceledMetric = "commandhandler_canceled_operations_total"

	// CommandHandlerTimeoutMetric tracks timeout operations.
	CommandHandlerTimeoutMetric = "commandhandler_timeout_operations_total"

	// CommandHandlerRetriesMetric tracks journal append retries.
	//
	// Labels: command_type, attempt_number, error_type
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric tracks the total backoff delay of a command.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric tracks exhausted retries.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// QueryHandlerDurationMetric tracks query handler execution duration.
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// QueryHandlerRejectedMetric tracks queries rejected by access rules.
	QueryHandlerRejectedMetric = "queryhandler_rejected_operations_total"

	StatusSuccess  = "success"
	StatusError    = "error"
	StatusRejected = "rejected"
	StatusCanceled = "canceled"
	StatusTimeout  = "timeout"
	StatusConflict = "concurrency_conflict"

	LogMsgCommandStarted           = "command handler started"
	LogMsgCommandCompleted         = "command handler completed"
	LogMsgCommandRejected          = "command handler rejected"
	LogMsgCommandFailed            = "command handler failed"
	LogMsgPersistenceWarning       = "command outcome not persisted"
	LogMsgQueryStarted             = "query handler started"
	LogMsgQueryCompleted           = "query handler completed"
	LogMsgQueryRejected            = "query handler rejected"
	LogMsgQueryFailed              = "query handler failed"
	LogMsgRecordLineSkipped        = "record line skipped"
	LogMsgLibraryLoaded            = "library loaded"
	LogMsgJournalOpened            = "journal opened"
	LogMsgObservabilityInitialized = "observability initialized"

	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrReason          = "reason"
	LogAttrError           = "error"
	LogAttrUserID          = "user_id"
	LogAttrFile            = "file"
	LogAttrLine            = "line"
	LogAttrUsers           = "users"
	LogAttrBooks           = "books"
	LogAttrLoans           = "loans"
	LogAttrBackend         = "backend"
	LogAttrJournalFailed   = "journal_failed"
	LogAttrSnapshotFailed  = "snapshot_failed"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// MetricsCollector is the eventstore interface, shared by handlers.
type MetricsCollector = eventstore.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = eventstore.ContextualMetricsCollector

// TracingCollector interface for distributed tracing in handlers.
type TracingCollector = eventstore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = eventstore.SpanContext

// ContextualLogger interface for context-aware logging.
type ContextualLogger = eventstore.ContextualLogger

// Logger interface for basic logging.
type Logger = eventstore.Logger

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   fmt.Sprintf("%d", attemptNumber),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// IncrementCounter prefers the contextual variant when the collector supports it.
func IncrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// RecordDuration prefers the contextual variant when the collector supports it.
func RecordDuration(ctx context.Context, collector MetricsCollector, metric string, duration time.Duration, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

// RecordCommandMetrics records duration and calls plus the status specific counters of a command.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {

	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	RecordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	IncrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	switch status {
	case StatusCanceled:
		IncrementCounter(ctx, collector, CommandHandlerCanceledMetric, BuildCommandLabels(commandType, status))
	case StatusTimeout:
		IncrementCounter(ctx, collector, CommandHandlerTimeoutMetric, BuildCommandLabels(commandType, status))
	}
}

// RecordRejection counts a rejected command or query by reason.
func RecordRejection(ctx context.Context, collector MetricsCollector, metric, typeLabel, typeValue string, reason core.RejectionReason) {
	IncrementCounter(ctx, collector, metric, map[string]string{
		typeLabel:     typeValue,
		LogAttrReason: string(reason),
		LogAttrStatus: StatusRejected,
	})
}

// RecordQueryMetrics records duration and calls of a query.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {

	labels := BuildQueryLabels(queryType, status)
	RecordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	IncrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)
}

// StartSpan starts a tracing span, or returns ctx and nil if tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	spanName string,
	typeLabel string,
	typeValue string,
) (context.Context, SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, spanName, map[string]string{typeLabel: typeValue})
}

// FinishSpan completes a tracing span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	if reason, ok := core.ReasonOf(err); ok {
		attrs[LogAttrReason] = string(reason)
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// Log writes through the contextual logger if set, else through the basic logger.
func Log(ctx context.Context, logger Logger, contextualLogger ContextualLogger, level string, msg string, args ...any) {
	if contextualLogger != nil {
		switch level {
		case "debug":
			contextualLogger.DebugContext(ctx, msg, args...)
		case "warn":
			contextualLogger.WarnContext(ctx, msg, args...)
		case "error":
			contextualLogger.ErrorContext(ctx, msg, args...)
		default:
			contextualLogger.InfoContext(ctx, msg, args...)
		}

		return
	}

	if logger == nil {
		return
	}

	switch level {
	case "debug":
		logger.Debug(msg, args...)
	case "warn":
		logger.Warn(msg, args...)
	case "error":
		logger.Error(msg, args...)
	default:
		logger.Info(msg, args...)
	}
}

// StatusOf classifies a handler error for metrics, spans and logs.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, core.ErrRejected):
		return StatusRejected
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return StatusConflict
	default:
		return StatusError
	}
}
