package patronloans

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
)

// ProjectPatronLoans returns the patron's open loans sorted by loan date (oldest first).
// Only patrons have loans; any other actor is rejected with NotPatron.
func ProjectPatronLoans(state core.LibraryState, query Query) (PatronLoans, error) {
	if actor, ok := state.User(query.PatronID); !ok || !actor.IsPatron() {
		return PatronLoans{}, core.Reject(core.ReasonNotPatron, "only patrons have loans")
	}

	today := core.ToDay(query.At)
	open := state.OpenLoansOf(query.PatronID)

	slices.SortStableFunc(open, func(a, b core.LoanRecord) int {
		if c := a.LoanDate.Compare(b.LoanDate); c != 0 {
			return c
		}

		return strings.Compare(a.LoanID, b.LoanID)
	})

	result := PatronLoans{
		PatronID:    query.PatronID,
		Loans:       make([]LoanStatus, 0, len(open)),
		TotalFines:  decimal.Zero,
		MaxRenewals: state.Policy.MaxRenewals,
	}

	for _, loan := range open {
		fine := core.CurrentFine(loan, today, state.Policy)

		result.Loans = append(result.Loans, LoanStatus{
			Record:      loan,
			Title:       state.TitleOf(loan.BookID),
			IsOverdue:   core.IsOverdue(loan, today),
			CurrentFine: fine,
		})
		result.TotalFines = result.TotalFines.Add(fine)
	}

	return result, nil
}
