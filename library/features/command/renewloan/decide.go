package renewloan

import (
	"fmt"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// Decide determines whether the patron's open loan on the book may be renewed.
//
// Business Rules, checked in this order:
//
//	GIVEN: a patron with an open loan on the book
//	WHEN: RenewLoan is received
//	THEN: LoanRenewed with the due date moved by the renewal period
//	ERROR: NotPatron if the actor is not a patron
//	ERROR: NotFound if the patron has no open loan on the book
//	ERROR: AlreadyOverdue if today is after the due date (due today is fine)
//	ERROR: RenewalLimitReached if the loan was renewed the maximum number of times
func Decide(state core.LibraryState, command Command) core.DecisionResult {
	today := core.ToDay(command.At)
	policy := state.Policy

	if actor, ok := state.User(command.PatronID); !ok || !actor.IsPatron() {
		return reject(command, core.Reject(core.ReasonNotPatron, "only patrons can renew loans"))
	}

	loan, ok := state.OpenLoanFor(command.PatronID, command.BookID)
	if !ok {
		return reject(command, core.Reject(
			core.ReasonNotFound,
			fmt.Sprintf("you have no open loan for book %s", command.BookID),
		))
	}

	if core.IsOverdue(loan, today) {
		return reject(command, core.Reject(core.ReasonAlreadyOverdue, "an overdue loan cannot be renewed"))
	}

	if loan.Renewals >= policy.MaxRenewals {
		return reject(command, core.Reject(
			core.ReasonRenewalLimitReached,
			fmt.Sprintf("renewal limit of %d reached", policy.MaxRenewals),
		))
	}

	return core.SuccessDecision(
		core.BuildLoanRenewed(loan, core.AddDays(loan.DueDate, policy.RenewalPeriodDays), command.At),
	)
}

func reject(command Command, rejection core.Rejection) core.DecisionResult {
	return core.ErrorDecision(
		core.BuildRenewingLoanFailed(command.PatronID, command.BookID, rejection, command.At),
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
			core.RenewingLoanFailedEventType,
		).
		AndAnyPredicateOf(eventstore.P("BookID", bookID)).
		Finalize()
}
