package loanhistory

import (
	"github.com/softlib/loantracker/library/core"
)

type HistoryEntry struct {
	Record core.LoanRecord
	Title  string
}

// LoanHistory represents the query result.
type LoanHistory struct {
	Entries []HistoryEntry
	Count   int
}
