package loanactivity

import (
	"github.com/softlib/loantracker/library/core"
)

const (
	queryType = "LoanActivity"
)

// Query represents the intent of a librarian to trace what happened to a book and/or a patron.
// Empty BookID and PatronID select the whole journal.
type Query struct {
	ActorID  core.UserIDString
	BookID   core.BookIDString
	PatronID core.UserIDString
}

// BuildQuery creates a new Query.
func BuildQuery(actorID core.UserIDString, bookID core.BookIDString, patronID core.UserIDString) Query {
	return Query{
		ActorID:  actorID,
		BookID:   bookID,
		PatronID: patronID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
