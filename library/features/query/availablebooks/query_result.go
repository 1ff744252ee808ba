package availablebooks

import (
	"github.com/softlib/loantracker/library/core"
)

// BookInfo is a book together with its shelf status.
type BookInfo struct {
	Book   core.Book
	Status core.BookStatus
}

// AvailableBooks represents the query result.
type AvailableBooks struct {
	Books []BookInfo
	Count int
}
