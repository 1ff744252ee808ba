package availablebooks

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

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (AvailableBooks, error) {
	if err := ctx.Err(); err != nil {
		return AvailableBooks{}, err
	}

	return ProjectAvailableBooks(h.library.Snapshot(), query), nil
}
