package createloan

import (
	"fmt"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// Decide determines whether the patron may borrow the book.
//
// Business Rules, checked in this order:
//
//	GIVEN: a patron and a book
//	WHEN: CreateLoan is received
//	THEN: LoanOpened with the next loan ID, due after the initial loan period
//	ERROR: NotPatron if the actor is not a patron
//	ERROR: LoanLimitReached if the patron already holds the maximum of open loans
//	ERROR: BookUnavailable if the book is unknown, not loanable or already lent
func Decide(state core.LibraryState, command Command) core.DecisionResult {
	today := core.ToDay(command.At)
	policy := state.Policy

	if actor, ok := state.User(command.PatronID); !ok || !actor.IsPatron() {
		return reject(command, core.Reject(core.ReasonNotPatron, "only patrons can borrow books"))
	}

	if open := len(state.OpenLoansOf(command.PatronID)); open >= policy.MaxActiveLoansPerPatron {
		return reject(command, core.Reject(
			core.ReasonLoanLimitReached,
			fmt.Sprintf("you already have %d open loans, the limit is %d", open, policy.MaxActiveLoansPerPatron),
		))
	}

	if !isAvailable(state, command.BookID) {
		return reject(command, core.Reject(
			core.ReasonBookUnavailable,
			fmt.Sprintf("book %s is not available for loan", command.BookID),
		))
	}

	return core.SuccessDecision(
		core.BuildLoanOpened(
			state.NextLoanID(),
			command.PatronID,
			command.BookID,
			today,
			core.AddDays(today, policy.InitialLoanPeriodDays),
			command.At,
		),
	)
}

func isAvailable(state core.LibraryState, bookID core.BookIDString) bool {
	if _, ok := state.Book(bookID); !ok {
		return false
	}

	status, ok := state.Status(bookID)
	if !ok || !status.Loanable {
		return false
	}

	_, lent := state.OpenLoanOnBook(bookID)

	return !lent
}

func reject(command Command, rejection core.Rejection) core.DecisionResult {
	return core.ErrorDecision(
		core.BuildOpeningLoanFailed(command.PatronID, command.BookID, rejection, command.At),
		rejection,
	)
}

// BuildEventFilter selects the journal events about the patron or the book
// which are relevant for this feature.
func BuildEventFilter(patronID core.UserIDString, bookID core.BookIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanOpenedEventType,
			core.LoanReturnedEventType,
			core.FinesSettledEventType,
			core.OpeningLoanFailedEventType,
		).
		AndAnyPredicateOf(
			eventstore.P("PatronID", patronID),
			eventstore.P("BookID", bookID),
		).
		Finalize()
}
