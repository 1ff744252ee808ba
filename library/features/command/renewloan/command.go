package renewloan

import (
	"time"

	"github.com/softlib/loantracker/library/core"
)

const (
	commandType = "RenewLoan"
)

// Command represents the intent of a patron to keep a borrowed book longer.
type Command struct {
	PatronID core.UserIDString
	BookID   core.BookIDString
	At       time.Time
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(patronID core.UserIDString, bookID core.BookIDString, at time.Time) Command {
	return Command{
		PatronID: patronID,
		BookID:   bookID,
		At:       at,
	}
}
