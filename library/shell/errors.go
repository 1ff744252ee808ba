package shell

import "errors"

var (
	ErrUnknownLoan           = errors.New("unknown loan")
	ErrUnknownBook           = errors.New("unknown book")
	ErrDuplicateLoan         = errors.New("loan id already in ledger")
	ErrApplyingEventFailed   = errors.New("applying event to the library failed")
	ErrJournalAppendFailed   = errors.New("appending to the journal failed")
	ErrSnapshotSaveFailed    = errors.New("saving the record snapshot failed")
	ErrUnexpectedSuccessType = errors.New("decision produced an unexpected success event")
)
