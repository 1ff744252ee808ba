package settlefines

import (
	"time"

	"github.com/softlib/loantracker/library/core"
)

const (
	commandType = "SettleFines"
)

// Command represents the intent of a patron to pay fines.
// An empty LoanIDs settles every overdue loan of the patron.
type Command struct {
	PatronID core.UserIDString
	LoanIDs  []core.LoanIDString
	At       time.Time
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(patronID core.UserIDString, loanIDs []core.LoanIDString, at time.Time) Command {
	return Command{
		PatronID: patronID,
		LoanIDs:  loanIDs,
		At:       at,
	}
}
