package patronloans

import (
	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
)

// LoanStatus bundles an open loan with what the patron needs to see about it.
type LoanStatus struct {
	Record      core.LoanRecord
	Title       string
	IsOverdue   bool
	CurrentFine decimal.Decimal
}

// PatronLoans represents the query result.
type PatronLoans struct {
	PatronID    core.UserIDString
	Loans       []LoanStatus
	TotalFines  decimal.Decimal
	MaxRenewals int
}
