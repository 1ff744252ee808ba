package patronloans

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

// Handle returns a core.Rejection as error if the actor is not a patron.
func (h QueryHandler) Handle(ctx context.Context, query Query) (PatronLoans, error) {
	if err := ctx.Err(); err != nil {
		return PatronLoans{}, err
	}

	return ProjectPatronLoans(h.library.Snapshot(), query)
}
