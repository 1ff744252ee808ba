package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/softlib/loantracker/library/core"
)

func Test_CurrentFine_ThreeDaysOverdue(t *testing.T) {
	// arrange
	loan := givenOpenLoan(t, date(2025, 12, 1), date(2025, 12, 8))

	// act
	fine := core.CurrentFine(loan, date(2025, 12, 11), core.DefaultPolicy())

	// assert
	assert.True(t, decimal.RequireFromString("1.50").Equal(fine), "got %s", fine)
}

func Test_CurrentFine_ZeroOnOrBeforeDueDate(t *testing.T) {
	loan := givenOpenLoan(t, date(2025, 12, 1), date(2025, 12, 8))
	policy := core.DefaultPolicy()

	assert.True(t, core.CurrentFine(loan, date(2025, 12, 1), policy).IsZero())
	assert.True(t, core.CurrentFine(loan, date(2025, 12, 8), policy).IsZero())
}

func Test_CurrentFine_ClosedLoanKeepsStoredFine(t *testing.T) {
	// arrange
	loan := givenOpenLoan(t, date(2025, 12, 1), date(2025, 12, 8))
	loan.Return = core.ReturnedOn{Date: date(2025, 12, 9)}
	loan.Fine = decimal.RequireFromString("0.50")

	// act
	fine := core.CurrentFine(loan, date(2026, 3, 1), core.DefaultPolicy())

	// assert
	assert.True(t, loan.Fine.Equal(fine))
}

func Test_CurrentFine_IgnoresTimeOfDay(t *testing.T) {
	loan := givenOpenLoan(t, date(2025, 12, 1), date(2025, 12, 8))
	lateEvening := time.Date(2025, 12, 9, 23, 59, 0, 0, time.UTC)

	fine := core.CurrentFine(loan, lateEvening, core.DefaultPolicy())

	assert.True(t, decimal.RequireFromString("0.50").Equal(fine))
}

func Test_IsOverdue(t *testing.T) {
	loan := givenOpenLoan(t, date(2025, 12, 1), date(2025, 12, 8))

	assert.False(t, core.IsOverdue(loan, date(2025, 12, 8)), "due today is not overdue")
	assert.True(t, core.IsOverdue(loan, date(2025, 12, 9)))

	loan.Return = core.ReturnedOn{Date: date(2025, 12, 20)}
	assert.False(t, core.IsOverdue(loan, date(2025, 12, 21)), "closed loans are never overdue")
}

func Test_DaysBetween(t *testing.T) {
	assert.Equal(t, 3, core.DaysBetween(date(2025, 12, 8), date(2025, 12, 11)))
	assert.Equal(t, -3, core.DaysBetween(date(2025, 12, 11), date(2025, 12, 8)))
	assert.Equal(t, 1, core.DaysBetween(
		time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC),
	))
	assert.Equal(t, 31, core.DaysBetween(date(2025, 3, 1), date(2025, 4, 1)))
}

func givenOpenLoan(t *testing.T, loanDate, dueDate time.Time) core.LoanRecord {
	t.Helper()

	return core.LoanRecord{
		LoanID:   "001",
		PatronID: "C101",
		BookID:   "L001",
		LoanDate: loanDate,
		DueDate:  dueDate,
		Return:   core.StillOpen{},
		Fine:     decimal.Zero,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
