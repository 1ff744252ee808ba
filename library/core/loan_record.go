package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const loanIDWidth = 3

// ReturnStatus is either StillOpen or ReturnedOn.
type ReturnStatus interface {
	isReturnStatus()
}

// StillOpen marks a loan without a recorded return date.
type StillOpen struct{}

func (StillOpen) isReturnStatus() {}

// ReturnedOn marks a closed loan.
type ReturnedOn struct {
	Date time.Time
}

func (ReturnedOn) isReturnStatus() {}

// LoanRecord is one entry of the ledger.
// Fine is only meaningful once the loan is closed; while open the current fine is derived.
type LoanRecord struct {
	LoanID   LoanIDString
	PatronID UserIDString
	BookID   BookIDString
	LoanDate time.Time
	DueDate  time.Time
	Return   ReturnStatus
	Fine     decimal.Decimal
	Renewals int
}

func (r LoanRecord) IsOpen() bool {
	switch r.Return.(type) {
	case ReturnedOn:
		return false
	default:
		return true
	}
}

// ReturnDate returns the return date of a closed loan.
func (r LoanRecord) ReturnDate() (time.Time, bool) {
	if returned, ok := r.Return.(ReturnedOn); ok {
		return returned.Date, true
	}

	return time.Time{}, false
}

// FormatLoanID renders a loan sequence number as a loan ID.
func FormatLoanID(seq uint) LoanIDString {
	return fmt.Sprintf("%0*d", loanIDWidth, seq)
}

// LoanSequenceOf parses a numeric loan ID, non-numeric IDs report false.
func LoanSequenceOf(loanID LoanIDString) (uint, bool) {
	seq, err := strconv.ParseUint(loanID, 10, 64)
	if err != nil {
		return 0, false
	}

	return uint(seq), true
}
