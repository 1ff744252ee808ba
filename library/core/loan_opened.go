package core

import (
	"time"
)

// LoanOpenedEventType is the event type identifier.
const LoanOpenedEventType = "LoanOpened"

// LoanOpened represents a patron borrowing a book.
type LoanOpened struct {
	LoanID     LoanIDString
	PatronID   UserIDString
	BookID     BookIDString
	LoanDate   time.Time
	DueDate    time.Time
	OccurredAt OccurredAt
}

// BuildLoanOpened creates a new LoanOpened event.
func BuildLoanOpened(
	loanID LoanIDString,
	patronID UserIDString,
	bookID BookIDString,
	loanDate time.Time,
	dueDate time.Time,
	occurredAt time.Time,
) LoanOpened {

	return LoanOpened{
		LoanID:     loanID,
		PatronID:   patronID,
		BookID:     bookID,
		LoanDate:   ToDay(loanDate),
		DueDate:    ToDay(dueDate),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LoanOpened) EventType() EventTypeString {
	return LoanOpenedEventType
}

func (e LoanOpened) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanOpened) IsErrorEvent() bool {
	return false
}
