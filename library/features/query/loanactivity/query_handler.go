package loanactivity

import (
	"context"
	"errors"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

// ErrJournalQueryFailed wraps failures of reading or decoding the journal.
var ErrJournalQueryFailed = errors.New("journal query failed")

// QueryHandler reads the journal; the Library is only consulted for the actor's role.
type QueryHandler struct {
	library *shell.Library
	journal shell.Journal
}

func NewQueryHandler(library *shell.Library, journal shell.Journal) QueryHandler {
	return QueryHandler{
		library: library,
		journal: journal,
	}
}

// Handle returns a core.Rejection as error if the actor is not a librarian.
func (h QueryHandler) Handle(ctx context.Context, query Query) (LoanActivity, error) {
	if err := ctx.Err(); err != nil {
		return LoanActivity{}, err
	}

	if actor, ok := h.library.Users().ByID(query.ActorID); !ok || !actor.IsLibrarian() {
		return LoanActivity{}, core.Reject(core.ReasonNotLibrarian, "only librarians can view loan activity")
	}

	storableEvents, _, err := h.journal.Query(ctx, BuildEventFilter(query.BookID, query.PatronID))
	if err != nil {
		return LoanActivity{}, errors.Join(ErrJournalQueryFailed, err)
	}

	envelopes, err := shell.EventEnvelopesFrom(storableEvents)
	if err != nil {
		return LoanActivity{}, errors.Join(ErrJournalQueryFailed, err)
	}

	return ProjectLoanActivity(envelopes, query), nil
}
