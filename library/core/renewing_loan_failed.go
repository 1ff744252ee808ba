package core

import (
	"time"
)

// RenewingLoanFailedEventType is the event type identifier.
const RenewingLoanFailedEventType = "RenewingLoanFailed"

// RenewingLoanFailed represents renewing a loan being rejected.
type RenewingLoanFailed struct {
	PatronID    UserIDString
	BookID      BookIDString
	Reason      RejectionReason
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildRenewingLoanFailed creates a new RenewingLoanFailed event.
func BuildRenewingLoanFailed(
	patronID UserIDString,
	bookID BookIDString,
	rejection Rejection,
	occurredAt time.Time,
) RenewingLoanFailed {

	return RenewingLoanFailed{
		PatronID:    patronID,
		BookID:      bookID,
		Reason:      rejection.Reason,
		FailureInfo: rejection.Message,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e RenewingLoanFailed) EventType() EventTypeString {
	return RenewingLoanFailedEventType
}

func (e RenewingLoanFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e RenewingLoanFailed) IsErrorEvent() bool {
	return true
}
