package core

import (
	"time"
)

// OpeningLoanFailedEventType is the event type identifier.
const OpeningLoanFailedEventType = "OpeningLoanFailed"

// OpeningLoanFailed represents opening a loan being rejected.
type OpeningLoanFailed struct {
	PatronID    UserIDString
	BookID      BookIDString
	Reason      RejectionReason
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildOpeningLoanFailed creates a new OpeningLoanFailed event.
func BuildOpeningLoanFailed(
	patronID UserIDString,
	bookID BookIDString,
	rejection Rejection,
	occurredAt time.Time,
) OpeningLoanFailed {

	return OpeningLoanFailed{
		PatronID:    patronID,
		BookID:      bookID,
		Reason:      rejection.Reason,
		FailureInfo: rejection.Message,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e OpeningLoanFailed) EventType() EventTypeString {
	return OpeningLoanFailedEventType
}

func (e OpeningLoanFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e OpeningLoanFailed) IsErrorEvent() bool {
	return true
}
