package shell

import (
	"context"
	"errors"
	"sync"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// Persistence stores the outcome of a decided command: first the journal append with
// optimistic concurrency on the command's filter, then the full snapshot.
// Either collaborator may be nil.
type Persistence struct {
	journal      Journal
	snapshots    SnapshotSaver
	retryOptions []RetryOption
	saves        *snapshotGate
}

// snapshotGate serializes snapshot saves and remembers the newest saved revision.
type snapshotGate struct {
	mu    sync.Mutex
	saved uint64
}

// PersistenceOption configures Persistence.
type PersistenceOption func(*Persistence)

// WithJournal sets the event journal.
func WithJournal(journal Journal) PersistenceOption {
	return func(p *Persistence) {
		p.journal = journal
	}
}

// WithSnapshots sets the snapshot saver.
func WithSnapshots(snapshots SnapshotSaver) PersistenceOption {
	return func(p *Persistence) {
		p.snapshots = snapshots
	}
}

// WithRetryOptions sets a custom retry configuration for journal appends.
func WithRetryOptions(opts ...RetryOption) PersistenceOption {
	return func(p *Persistence) {
		p.retryOptions = opts
	}
}

func NewPersistence(opts ...PersistenceOption) Persistence {
	persistence := Persistence{saves: &snapshotGate{}}

	for _, opt := range opts {
		opt(&persistence)
	}

	return persistence
}

// Journal returns the configured journal, nil if there is none.
func (p Persistence) Journal() Journal {
	return p.journal
}

// Persist appends the decision's events and, for state changing decisions, saves the snapshot.
// It never returns an error: failures end up in HandlerResult.Warning.
func (p Persistence) Persist(
	ctx context.Context,
	filter eventstore.Filter,
	actorID core.UserIDString,
	decision core.DecisionResult,
	state core.LibraryState,
) HandlerResult {

	var failures []error

	retryMetrics, err := p.appendToJournal(ctx, filter, actorID, decision.Events)
	if err != nil {
		failures = append(failures, errors.Join(ErrJournalAppendFailed, err))
	}

	if decision.IsSuccess() && p.snapshots != nil {
		if err := p.saveSnapshot(ctx, state); err != nil {
			failures = append(failures, errors.Join(ErrSnapshotSaveFailed, err))
		}
	}

	if len(failures) == 0 {
		return newHandlerResult(retryMetrics, nil)
	}

	return newHandlerResult(retryMetrics, &PersistenceWarning{Err: errors.Join(failures...)})
}

// saveSnapshot skips a state older than the last one saved, so a slow save of an earlier
// decision never overwrites the records of a later one.
func (p Persistence) saveSnapshot(ctx context.Context, state core.LibraryState) error {
	if p.saves == nil {
		return p.snapshots.Save(ctx, state)
	}

	p.saves.mu.Lock()
	defer p.saves.mu.Unlock()

	if state.Revision != 0 && state.Revision <= p.saves.saved {
		return nil
	}

	if err := p.snapshots.Save(ctx, state); err != nil {
		return err
	}

	p.saves.saved = max(p.saves.saved, state.Revision)

	return nil
}

func (p Persistence) appendToJournal(
	ctx context.Context,
	filter eventstore.Filter,
	actorID core.UserIDString,
	events core.DomainEvents,
) (RetryMetrics, error) {

	if p.journal == nil || len(events) == 0 {
		return RetryMetrics{LastErrorType: getErrorType(nil)}, nil
	}

	storableEvents, err := StorableEventsFrom(events, actorID)
	if err != nil {
		return RetryMetrics{LastErrorType: getErrorType(err)}, err
	}

	return RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		_, maxSequenceNumber, queryErr := p.journal.Query(retryCtx, filter)
		if queryErr != nil {
			return queryErr
		}

		return p.journal.Append(retryCtx, filter, maxSequenceNumber, storableEvents[0], storableEvents[1:]...)
	}, p.retryOptions...)
}
