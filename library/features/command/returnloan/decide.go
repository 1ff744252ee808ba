package returnloan

import (
	"fmt"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// Decide determines whether the patron's open loan on the book can be closed by returning the book.
//
// Business Rules, checked in this order:
//
//	GIVEN: a patron with an open loan on the book
//	WHEN: ReturnLoan is received
//	THEN: LoanReturned with the return date and the fine for the overdue days
//	ERROR: NotPatron if the actor is not a patron
//	ERROR: NotFound if the patron has no open loan on the book
//	ERROR: FinesOutstanding if fines are payable and the loan is overdue
func Decide(state core.LibraryState, command Command) core.DecisionResult {
	today := core.ToDay(command.At)
	policy := state.Policy

	if actor, ok := state.User(command.PatronID); !ok || !actor.IsPatron() {
		return reject(command, core.Reject(core.ReasonNotPatron, "only patrons can return books"))
	}

	loan, ok := state.OpenLoanFor(command.PatronID, command.BookID)
	if !ok {
		return reject(command, core.Reject(
			core.ReasonNotFound,
			fmt.Sprintf("you have no open loan for book %s", command.BookID),
		))
	}

	fine := core.CurrentFine(loan, today, policy)

	if policy.FineMode == core.FineModePayable && core.IsOverdue(loan, today) {
		return reject(command, core.Reject(
			core.ReasonFinesOutstanding,
			fmt.Sprintf("loan %s is overdue, settle the fine of %s first", loan.LoanID, fine.StringFixed(2)),
		))
	}

	return core.SuccessDecision(core.BuildLoanReturned(loan, today, fine, command.At))
}

func reject(command Command, rejection core.Rejection) core.DecisionResult {
	return core.ErrorDecision(
		core.BuildReturningLoanFailed(command.PatronID, command.BookID, rejection, command.At),
		rejection,
	)
}

// BuildEventFilter selects the journal events about the book
// which are relevant for this feature.
func BuildEventFilter(bookID core.BookIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanOpenedEventType,
			core.LoanRenewedEventType,
			core.LoanReturnedEventType,
			core.FinesSettledEventType,
			core.ReturningLoanFailedEventType,
		).
		AndAnyPredicateOf(eventstore.P("BookID", bookID)).
		Finalize()
}
