package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinesSettledEventType is the event type identifier.
const FinesSettledEventType = "FinesSettled"

// FinesSettled represents an overdue loan closed by paying its fine.
// Settling several loans at once produces one event per loan.
type FinesSettled struct {
	LoanID     LoanIDString
	PatronID   UserIDString
	BookID     BookIDString
	ReturnDate time.Time
	Fine       decimal.Decimal
	OccurredAt OccurredAt
}

// BuildFinesSettled creates a new FinesSettled event.
func BuildFinesSettled(loan LoanRecord, settledOn time.Time, fine decimal.Decimal, occurredAt time.Time) FinesSettled {
	return FinesSettled{
		LoanID:     loan.LoanID,
		PatronID:   loan.PatronID,
		BookID:     loan.BookID,
		ReturnDate: ToDay(settledOn),
		Fine:       fine,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e FinesSettled) EventType() EventTypeString {
	return FinesSettledEventType
}

func (e FinesSettled) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e FinesSettled) IsErrorEvent() bool {
	return false
}
