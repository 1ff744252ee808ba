package loanhistory

import (
	"github.com/softlib/loantracker/library/core"
)

const (
	queryType = "LoanHistory"
)

// Query represents the intent of a librarian to read the whole ledger.
type Query struct {
	ActorID core.UserIDString
}

// BuildQuery creates a new Query.
func BuildQuery(actorID core.UserIDString) Query {
	return Query{ActorID: actorID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
