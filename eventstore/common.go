package eventstore

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Append when the stream moved past the expected sequence number.
	ErrConcurrencyConflict = errors.New("concurrency conflict: stream changed since it was queried")

	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrEmptyEventsTableName        = errors.New("events table name must not be empty")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrAppendingEventFailed        = errors.New("appending the event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrBuildingQueryFailed         = errors.New("building the query failed")
	ErrMigratingSchemaFailed       = errors.New("migrating the journal schema failed")
)

// MaxSequenceNumberUint is the highest sequence number of a "dynamic event stream" at query time.
// Zero means the stream is empty.
type MaxSequenceNumberUint = uint
