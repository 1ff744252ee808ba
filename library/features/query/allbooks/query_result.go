package allbooks

import (
	"github.com/softlib/loantracker/library/core"
)

// BookEntry is a book, its status and the derived Borrowed flag.
// A book without a status row carries the zero BookStatus.
type BookEntry struct {
	Book     core.Book
	Status   core.BookStatus
	Borrowed bool
}

// Catalog represents the query result.
type Catalog struct {
	Books []BookEntry
	Count int
}
