package allbooks

import (
	"maps"
	"slices"

	"github.com/softlib/loantracker/library/core"
)

// ProjectCatalog lists every book sorted by ID. Borrowed is derived from the open loans,
// never from the Loanable flag.
func ProjectCatalog(state core.LibraryState, _ Query) Catalog {
	books := make([]BookEntry, 0, len(state.Books))

	for _, bookID := range slices.Sorted(maps.Keys(state.Books)) {
		status, ok := state.Status(bookID)
		if !ok {
			status = core.BookStatus{BookID: bookID}
		}

		_, borrowed := state.OpenLoanOnBook(bookID)

		books = append(books, BookEntry{
			Book:     state.Books[bookID],
			Status:   status,
			Borrowed: borrowed,
		})
	}

	return Catalog{
		Books: books,
		Count: len(books),
	}
}
