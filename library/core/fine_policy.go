package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverdueDays is the number of whole days today lies past the due date, never negative.
func OverdueDays(loan LoanRecord, today time.Time) int {
	return max(0, DaysBetween(loan.DueDate, today))
}

// IsOverdue reports an open loan whose due date has passed. A loan due today is not overdue.
func IsOverdue(loan LoanRecord, today time.Time) bool {
	return loan.IsOpen() && ToDay(today).After(ToDay(loan.DueDate))
}

// CurrentFine derives the fine of an open loan as of today; a closed loan keeps its stored fine.
func CurrentFine(loan LoanRecord, today time.Time, policy Policy) decimal.Decimal {
	if !loan.IsOpen() {
		return loan.Fine
	}

	return policy.FinePerDay.Mul(decimal.NewFromInt(int64(OverdueDays(loan, today))))
}
