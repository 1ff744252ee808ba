package patronloans

import (
	"time"

	"github.com/softlib/loantracker/library/core"
)

const (
	queryType = "PatronLoans"
)

// Query represents the intent of a patron to review their open loans as of a day.
type Query struct {
	PatronID core.UserIDString
	At       time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(patronID core.UserIDString, at time.Time) Query {
	return Query{
		PatronID: patronID,
		At:       at,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
