package textstore

import (
	"errors"
	"strings"
	"time"
)

const (
	UsersFile     = "users.txt"
	BooksFile     = "books.txt"
	StatusFile    = "status.txt"
	LoansFile     = "loans.txt"
	LedgerSeqFile = "ledger.seq"

	isoDateLayout    = "2006-01-02"
	legacyDateLayout = "02/01/2006"
	openReturnDate   = "None"
	separator        = ';'
)

var (
	ErrInvalidDate = errors.New("invalid date")

	headers = map[string]string{
		UsersFile:     "code;name;role;login;secret",
		BooksFile:     "code;title;author",
		StatusFile:    "book_code;location;condition;loanable",
		LoansFile:     "loan_code;patron_code;book_code;loan_date;due_date;return_date;fine;renewals",
		LedgerSeqFile: "last issued loan number",
	}

	truthy = []string{"true", "1", "sim", "s", "yes"}
)

// parseDate accepts YYYY-MM-DD and the legacy DD/MM/YYYY.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range []string{isoDateLayout, legacyDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Join(ErrInvalidDate, errors.New(value))
}

func formatDate(t time.Time) string {
	return t.Format(isoDateLayout)
}

func parseLoanable(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))

	for _, t := range truthy {
		if v == t {
			return true
		}
	}

	return false
}

func formatLoanable(loanable bool) string {
	if loanable {
		return "true"
	}

	return "false"
}
