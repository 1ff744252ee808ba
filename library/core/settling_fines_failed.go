package core

import (
	"time"
)

// SettlingFinesFailedEventType is the event type identifier.
const SettlingFinesFailedEventType = "SettlingFinesFailed"

// SettlingFinesFailed represents a rejected fine settlement. LoanIDs is empty when all loans were requested.
type SettlingFinesFailed struct {
	PatronID    UserIDString
	LoanIDs     []LoanIDString
	Reason      RejectionReason
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildSettlingFinesFailed creates a new SettlingFinesFailed event.
func BuildSettlingFinesFailed(
	patronID UserIDString,
	loanIDs []LoanIDString,
	rejection Rejection,
	occurredAt time.Time,
) SettlingFinesFailed {

	return SettlingFinesFailed{
		PatronID:    patronID,
		LoanIDs:     loanIDs,
		Reason:      rejection.Reason,
		FailureInfo: rejection.Message,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e SettlingFinesFailed) EventType() EventTypeString {
	return SettlingFinesFailedEventType
}

func (e SettlingFinesFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e SettlingFinesFailed) IsErrorEvent() bool {
	return true
}
