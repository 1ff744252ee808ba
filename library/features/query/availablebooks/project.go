package availablebooks

import (
	"maps"
	"slices"

	"github.com/softlib/loantracker/library/core"
)

// ProjectAvailableBooks is a pure function from a library snapshot to the available books.
//
// Query Logic:
//
//	INCLUDES: books with a loanable status
//	EXCLUDES: books without a status row and books referenced by an open loan
func ProjectAvailableBooks(state core.LibraryState, _ Query) AvailableBooks {
	books := make([]BookInfo, 0, len(state.Books))

	for _, bookID := range slices.Sorted(maps.Keys(state.Books)) {
		status, ok := state.Status(bookID)
		if !ok || !status.Loanable {
			continue
		}

		if _, lent := state.OpenLoanOnBook(bookID); lent {
			continue
		}

		books = append(books, BookInfo{Book: state.Books[bookID], Status: status})
	}

	return AvailableBooks{
		Books: books,
		Count: len(books),
	}
}
