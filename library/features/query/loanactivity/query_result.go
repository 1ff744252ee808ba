package loanactivity

import (
	"time"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// ActivityEntry is one journal event prepared for display.
type ActivityEntry struct {
	SequenceNumber eventstore.MaxSequenceNumberUint
	EventType      core.EventTypeString
	OccurredAt     time.Time
	ActorID        core.UserIDString
	Failed         bool
	Summary        string
}

// LoanActivity represents the query result.
type LoanActivity struct {
	BookID   core.BookIDString
	PatronID core.UserIDString
	Entries  []ActivityEntry
	Count    int
}
