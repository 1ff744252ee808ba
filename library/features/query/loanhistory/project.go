package loanhistory

import (
	"slices"
	"strings"

	"github.com/softlib/loantracker/library/core"
)

// ProjectLoanHistory lists all loan records, newest loan date first and ties by loan ID descending.
// Only librarians may read the full ledger.
func ProjectLoanHistory(state core.LibraryState, query Query) (LoanHistory, error) {
	if actor, ok := state.User(query.ActorID); !ok || !actor.IsLibrarian() {
		return LoanHistory{}, core.Reject(core.ReasonNotLibrarian, "only librarians can view the full history")
	}

	records := slices.Clone(state.Loans)
	slices.SortStableFunc(records, func(a, b core.LoanRecord) int {
		if c := b.LoanDate.Compare(a.LoanDate); c != 0 {
			return c
		}

		return strings.Compare(b.LoanID, a.LoanID)
	})

	entries := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, HistoryEntry{Record: record, Title: state.TitleOf(record.BookID)})
	}

	return LoanHistory{
		Entries: entries,
		Count:   len(entries),
	}, nil
}
