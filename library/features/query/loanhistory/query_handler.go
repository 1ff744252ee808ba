package loanhistory

import (
	"context"

	"github.com/softlib/loantracker/library/shell"
)

// QueryHandler projects a snapshot of the Library.
type QueryHandler struct {
	library *shell.Library
}

func NewQueryHandler(library *shell.Library) QueryHandler {
	return QueryHandler{library: library}
}

// Handle returns a core.Rejection as error if the actor is not a librarian.
func (h QueryHandler) Handle(ctx context.Context, query Query) (LoanHistory, error) {
	if err := ctx.Err(); err != nil {
		return LoanHistory{}, err
	}

	return ProjectLoanHistory(h.library.Snapshot(), query)
}
