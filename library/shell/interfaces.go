package shell

import (
	"context"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// Journal is the append-only event log. All eventstore engines satisfy it.
type Journal interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		storableEvent eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// SnapshotSaver persists the full library state, e.g. as text records.
type SnapshotSaver interface {
	Save(ctx context.Context, state core.LibraryState) error
}

// Command is implemented by every command type; CommandType labels metrics, spans and logs.
type Command interface {
	CommandType() string
}

// CommandResult is implemented by command results that embed HandlerResult.
type CommandResult interface {
	ExecutionMetadata() HandlerResult
}

// CoreCommandHandler processes a command without observability concerns.
type CoreCommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query is implemented by every query type.
type Query interface {
	QueryType() string
}

// CoreQueryHandler processes a query without observability concerns.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
