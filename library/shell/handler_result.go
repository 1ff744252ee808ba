package shell

import (
	"errors"
	"time"
)

// PersistenceWarning reports that a command took effect in memory but its journal
// append or snapshot save failed. It is never a Rejection and the change is not rolled back.
type PersistenceWarning struct {
	Err error
}

func (w *PersistenceWarning) Error() string {
	return "persistence warning: " + w.Err.Error()
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// JournalFailed reports whether the journal append was part of the failure.
func (w *PersistenceWarning) JournalFailed() bool {
	return errors.Is(w.Err, ErrJournalAppendFailed)
}

// SnapshotFailed reports whether the snapshot save was part of the failure.
func (w *PersistenceWarning) SnapshotFailed() bool {
	return errors.Is(w.Err, ErrSnapshotSaveFailed)
}

// HandlerResult carries the execution metadata of a command handler run.
type HandlerResult struct {
	// RetryAttempts is the number of journal append attempts (1 for no retries, 0 without a journal).
	RetryAttempts int

	// TotalRetryDelay is the time spent in backoff delays, excluding the attempts themselves.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true when all attempts failed with a retryable error.
	RetriesExhausted bool

	// Warning is set when persisting the outcome failed.
	Warning *PersistenceWarning
}

func (r HandlerResult) ExecutionMetadata() HandlerResult {
	return r
}

// HasWarning returns true if persisting the outcome failed.
func (r HandlerResult) HasWarning() bool {
	return r.Warning != nil
}

func newHandlerResult(retryMetrics RetryMetrics, warning *PersistenceWarning) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
		Warning:          warning,
	}
}
