package allbooks

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

func (h QueryHandler) Handle(ctx context.Context, query Query) (Catalog, error) {
	if err := ctx.Err(); err != nil {
		return Catalog{}, err
	}

	return ProjectCatalog(h.library.Snapshot(), query), nil
}
