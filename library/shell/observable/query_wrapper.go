package observable

import (
	"context"
	"time"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

// QueryWrapper instruments a core query handler.
type QueryWrapper[Q shell.Query, R any] struct {
	coreHandler shell.CoreQueryHandler[Q, R]
	queryType   string
	observers
}

// NewQueryWrapper creates an observable wrapper around the core query handler.
func NewQueryWrapper[Q shell.Query, R any](
	coreHandler shell.CoreQueryHandler[Q, R],
	opts ...Option,
) (*QueryWrapper[Q, R], error) {

	o, err := newObservers(opts)
	if err != nil {
		return nil, err
	}

	var zeroQuery Q

	return &QueryWrapper[Q, R]{
		coreHandler: coreHandler,
		queryType:   zeroQuery.QueryType(),
		observers:   o,
	}, nil
}

// Handle delegates to the core handler and records the outcome.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	start := time.Now()
	ctx, span := shell.StartSpan(ctx, w.tracingCollector, shell.SpanNameQueryHandle, shell.LogAttrQueryType, w.queryType)
	w.log(ctx, "debug", shell.LogMsgQueryStarted)

	result, err := w.coreHandler.Handle(ctx, query)

	status := shell.StatusOf(err)
	duration := time.Since(start)

	shell.RecordQueryMetrics(ctx, w.metricsCollector, w.queryType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, err)

	switch status {
	case shell.StatusSuccess:
		w.log(ctx, "debug", shell.LogMsgQueryCompleted, shell.LogAttrDurationMS, shell.ToMilliseconds(duration))

	case shell.StatusRejected:
		reason, _ := core.ReasonOf(err)
		shell.RecordRejection(ctx, w.metricsCollector, shell.QueryHandlerRejectedMetric, shell.LogAttrQueryType, w.queryType, reason)
		w.log(ctx, "info", shell.LogMsgQueryRejected, shell.LogAttrReason, string(reason))

	default:
		w.log(ctx, "error", shell.LogMsgQueryFailed,
			shell.LogAttrStatus, status,
			shell.LogAttrError, err.Error(),
		)
	}

	return result, err
}

func (w *QueryWrapper[Q, R]) log(ctx context.Context, level, msg string, args ...any) {
	args = append([]any{shell.LogAttrQueryType, w.queryType}, args...)
	shell.Log(ctx, w.logger, w.contextualLogger, level, msg, withUserID(ctx, args)...)
}
