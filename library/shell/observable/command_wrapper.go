package observable

import (
	"context"
	"time"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/library/shell/session"
)

// CommandWrapper instruments a core command handler. It satisfies CoreCommandHandler itself,
// so wrappers can be handed to anything expecting the core handler.
type CommandWrapper[C shell.Command, R shell.CommandResult] struct {
	coreHandler shell.CoreCommandHandler[C, R]
	commandType string
	observers
}

// NewCommandWrapper creates an observable wrapper around the core command handler.
func NewCommandWrapper[C shell.Command, R shell.CommandResult](
	coreHandler shell.CoreCommandHandler[C, R],
	opts ...Option,
) (*CommandWrapper[C, R], error) {

	o, err := newObservers(opts)
	if err != nil {
		return nil, err
	}

	var zeroCommand C

	return &CommandWrapper[C, R]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
		observers:   o,
	}, nil
}

// Handle delegates to the core handler and records the outcome.
func (w *CommandWrapper[C, R]) Handle(ctx context.Context, command C) (R, error) {
	start := time.Now()
	ctx, span := shell.StartSpan(ctx, w.tracingCollector, shell.SpanNameCommandHandle, shell.LogAttrCommandType, w.commandType)
	w.log(ctx, "info", shell.LogMsgCommandStarted)

	result, err := w.coreHandler.Handle(ctx, command)
	metadata := result.ExecutionMetadata()

	w.recordRetryMetrics(ctx, metadata)
	w.recordPersistenceWarning(ctx, metadata)

	status := shell.StatusOf(err)
	duration := time.Since(start)

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, err)

	switch status {
	case shell.StatusSuccess:
		w.log(ctx, "info", shell.LogMsgCommandCompleted,
			shell.LogAttrBusinessOutcome, status,
			shell.LogAttrDurationMS, shell.ToMilliseconds(duration),
		)

	case shell.StatusRejected:
		reason, _ := core.ReasonOf(err)
		shell.RecordRejection(ctx, w.metricsCollector, shell.CommandHandlerRejectedMetric, shell.LogAttrCommandType, w.commandType, reason)
		w.log(ctx, "info", shell.LogMsgCommandRejected,
			shell.LogAttrReason, string(reason),
			shell.LogAttrError, err.Error(),
		)

	default:
		w.log(ctx, "error", shell.LogMsgCommandFailed,
			shell.LogAttrStatus, status,
			shell.LogAttrError, err.Error(),
		)
	}

	return result, err
}

func (w *CommandWrapper[C, R]) recordPersistenceWarning(ctx context.Context, metadata shell.HandlerResult) {
	if !metadata.HasWarning() {
		return
	}

	shell.IncrementCounter(ctx, w.metricsCollector, shell.CommandHandlerPersistenceWarningMetric, map[string]string{
		shell.LogAttrCommandType:    w.commandType,
		shell.LogAttrJournalFailed:  boolLabel(metadata.Warning.JournalFailed()),
		shell.LogAttrSnapshotFailed: boolLabel(metadata.Warning.SnapshotFailed()),
	})

	w.log(ctx, "warn", shell.LogMsgPersistenceWarning,
		shell.LogAttrJournalFailed, metadata.Warning.JournalFailed(),
		shell.LogAttrSnapshotFailed, metadata.Warning.SnapshotFailed(),
		shell.LogAttrError, metadata.Warning.Error(),
	)
}

func (w *CommandWrapper[C, R]) recordRetryMetrics(ctx context.Context, metadata shell.HandlerResult) {
	if w.metricsCollector == nil {
		return
	}

	if metadata.RetryAttempts > 1 {
		shell.IncrementCounter(ctx, w.metricsCollector, shell.CommandHandlerRetriesMetric,
			shell.BuildRetryLabels(w.commandType, metadata.RetryAttempts-1, metadata.LastErrorType))

		shell.RecordDuration(ctx, w.metricsCollector, shell.CommandHandlerRetryDelayMetric, metadata.TotalRetryDelay,
			map[string]string{shell.LogAttrCommandType: w.commandType})
	}

	if metadata.RetriesExhausted {
		shell.IncrementCounter(ctx, w.metricsCollector, shell.CommandHandlerMaxRetriesReachedMetric,
			map[string]string{shell.LogAttrCommandType: w.commandType})
	}
}

func (w *CommandWrapper[C, R]) log(ctx context.Context, level, msg string, args ...any) {
	args = append([]any{shell.LogAttrCommandType, w.commandType}, args...)
	shell.Log(ctx, w.logger, w.contextualLogger, level, msg, withUserID(ctx, args)...)
}

func withUserID(ctx context.Context, args []any) []any {
	if user, ok := session.UserFrom(ctx); ok {
		return append(args, shell.LogAttrUserID, user.ID)
	}

	return args
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
