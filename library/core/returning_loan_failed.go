package core

import (
	"time"
)

// ReturningLoanFailedEventType is the event type identifier.
const ReturningLoanFailedEventType = "ReturningLoanFailed"

// ReturningLoanFailed represents returning a loan being rejected.
type ReturningLoanFailed struct {
	PatronID    UserIDString
	BookID      BookIDString
	Reason      RejectionReason
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildReturningLoanFailed creates a new ReturningLoanFailed event.
func BuildReturningLoanFailed(
	patronID UserIDString,
	bookID BookIDString,
	rejection Rejection,
	occurredAt time.Time,
) ReturningLoanFailed {

	return ReturningLoanFailed{
		PatronID:    patronID,
		BookID:      bookID,
		Reason:      rejection.Reason,
		FailureInfo: rejection.Message,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e ReturningLoanFailed) EventType() EventTypeString {
	return ReturningLoanFailedEventType
}

func (e ReturningLoanFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e ReturningLoanFailed) IsErrorEvent() bool {
	return true
}
