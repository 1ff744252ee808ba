package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanReturnedEventType is the event type identifier.
const LoanReturnedEventType = "LoanReturned"

// LoanReturned represents a book coming back. Fine is fixed with this event.
type LoanReturned struct {
	LoanID     LoanIDString
	PatronID   UserIDString
	BookID     BookIDString
	ReturnDate time.Time
	Fine       decimal.Decimal
	OccurredAt OccurredAt
}

// BuildLoanReturned creates a new LoanReturned event.
func BuildLoanReturned(loan LoanRecord, returnDate time.Time, fine decimal.Decimal, occurredAt time.Time) LoanReturned {
	return LoanReturned{
		LoanID:     loan.LoanID,
		PatronID:   loan.PatronID,
		BookID:     loan.BookID,
		ReturnDate: ToDay(returnDate),
		Fine:       fine,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LoanReturned) EventType() EventTypeString {
	return LoanReturnedEventType
}

func (e LoanReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanReturned) IsErrorEvent() bool {
	return false
}
