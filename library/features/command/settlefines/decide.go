package settlefines

import (
	"fmt"
	"slices"
	"strings"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

// Decide determines which overdue loans of the patron are closed by paying their fines.
//
// Business Rules, checked in this order:
//
//	GIVEN: a patron with overdue open loans and the payable fine mode
//	WHEN: SettleFines is received
//	THEN: one FinesSettled per selected loan, all applied together
//	ERROR: NotPatron if the actor is not a patron
//	ERROR: SettlementDisabled if fines are only charged on return
//	ERROR: NotFound if there is no overdue loan or a requested loan is not among them
func Decide(state core.LibraryState, command Command) core.DecisionResult {
	today := core.ToDay(command.At)
	policy := state.Policy

	if actor, ok := state.User(command.PatronID); !ok || !actor.IsPatron() {
		return reject(command, core.Reject(core.ReasonNotPatron, "only patrons can settle fines"))
	}

	if policy.FineMode != core.FineModePayable {
		return reject(command, core.Reject(core.ReasonSettlementDisabled, "fines are charged when the book is returned"))
	}

	overdue := slices.DeleteFunc(state.OpenLoansOf(command.PatronID), func(loan core.LoanRecord) bool {
		return !core.IsOverdue(loan, today)
	})

	selected, missing := selectLoans(overdue, command.LoanIDs)
	if len(missing) > 0 {
		return reject(command, core.Reject(
			core.ReasonNotFound,
			fmt.Sprintf("no overdue loan with ID %s", strings.Join(missing, ", ")),
		))
	}

	if len(selected) == 0 {
		return reject(command, core.Reject(core.ReasonNotFound, "you have no overdue loans"))
	}

	events := make(core.DomainEvents, 0, len(selected))
	for _, loan := range selected {
		events = append(events, core.BuildFinesSettled(loan, today, core.CurrentFine(loan, today, policy), command.At))
	}

	return core.SuccessDecision(events[0], events[1:]...)
}

func selectLoans(overdue []core.LoanRecord, loanIDs []core.LoanIDString) ([]core.LoanRecord, []core.LoanIDString) {
	if len(loanIDs) == 0 {
		return overdue, nil
	}

	var selected []core.LoanRecord
	var missing []core.LoanIDString

	for _, loanID := range slices.Compact(slices.Sorted(slices.Values(loanIDs))) {
		i := slices.IndexFunc(overdue, func(loan core.LoanRecord) bool { return loan.LoanID == loanID })
		if i < 0 {
			missing = append(missing, loanID)
			continue
		}

		selected = append(selected, overdue[i])
	}

	return selected, missing
}

func reject(command Command, rejection core.Rejection) core.DecisionResult {
	return core.ErrorDecision(
		core.BuildSettlingFinesFailed(command.PatronID, command.LoanIDs, rejection, command.At),
		rejection,
	)
}

// BuildEventFilter selects the journal events about the patron's loans
// which are relevant for this feature.
func BuildEventFilter(patronID core.UserIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanOpenedEventType,
			core.LoanRenewedEventType,
			core.LoanReturnedEventType,
			core.FinesSettledEventType,
			core.SettlingFinesFailedEventType,
		).
		AndAnyPredicateOf(eventstore.P("PatronID", patronID)).
		Finalize()
}
