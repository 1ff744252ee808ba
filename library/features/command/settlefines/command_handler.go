package settlefines

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

// Result lists the loans closed by the settlement and the total paid.
type Result struct {
	Settled []core.LoanRecord
	Total   decimal.Decimal
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

	handlerResult := h.persistence.Persist(ctx, BuildEventFilter(command.PatronID), command.PatronID, decision, state)

	if rejection := decision.HasError(); rejection != nil {
		return Result{HandlerResult: handlerResult}, rejection
	}

	result := Result{Total: decimal.Zero, HandlerResult: handlerResult}

	for _, event := range decision.Events {
		settled, ok := event.(core.FinesSettled)
		if !ok {
			return Result{HandlerResult: handlerResult}, shell.ErrUnexpectedSuccessType
		}

		if i := slices.IndexFunc(state.Loans, func(r core.LoanRecord) bool { return r.LoanID == settled.LoanID }); i >= 0 {
			result.Settled = append(result.Settled, state.Loans[i])
		}

		result.Total = result.Total.Add(settled.Fine)
	}

	return result, nil
}
