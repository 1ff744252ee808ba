package renewloan

import (
	"context"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

// Result is the renewed loan together with the execution metadata.
type Result struct {
	Loan core.LoanRecord
	shell.HandlerResult
}

// CommandHandler runs Decide inside the Library's critical section and persists the outcome.
type CommandHandler struct {
	library     *shell.Library
	persistence shell.Persistence
}

func NewCommandHandler(library *shell.Library, persistence shell.Persistence) CommandHandler {
	return CommandHandler{
		library:     library,
		persistence: persistence,
	}
}

// Handle returns a core.Rejection as error for business rule violations.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	decision, state, err := h.library.Decide(func(s core.LibraryState) core.DecisionResult {
		return Decide(s, command)
	})
	if err != nil {
		return Result{}, err
	}

	handlerResult := h.persistence.Persist(ctx, BuildEventFilter(command.BookID), command.PatronID, decision, state)

	if rejection := decision.HasError(); rejection != nil {
		return Result{HandlerResult: handlerResult}, rejection
	}

	loan, _ := state.OpenLoanFor(command.PatronID, command.BookID)

	return Result{Loan: loan, HandlerResult: handlerResult}, nil
}
