package core

import (
	"time"
)

// LoanRenewedEventType is the event type identifier.
const LoanRenewedEventType = "LoanRenewed"

// LoanRenewed represents an extension of the due date of an open loan.
type LoanRenewed struct {
	LoanID          LoanIDString
	PatronID        UserIDString
	BookID          BookIDString
	PreviousDueDate time.Time
	DueDate         time.Time
	Renewals        int
	OccurredAt      OccurredAt
}

// BuildLoanRenewed creates a new LoanRenewed event.
func BuildLoanRenewed(loan LoanRecord, dueDate time.Time, occurredAt time.Time) LoanRenewed {
	return LoanRenewed{
		LoanID:          loan.LoanID,
		PatronID:        loan.PatronID,
		BookID:          loan.BookID,
		PreviousDueDate: ToDay(loan.DueDate),
		DueDate:         ToDay(dueDate),
		Renewals:        loan.Renewals + 1,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

func (e LoanRenewed) EventType() EventTypeString {
	return LoanRenewedEventType
}

func (e LoanRenewed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanRenewed) IsErrorEvent() bool {
	return false
}
