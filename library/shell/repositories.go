package shell

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
)

/***** UserRegistry *****/

// UserRegistry holds the immutable users, looked up by ID or by login.
type UserRegistry struct {
	byID map[core.UserIDString]core.User
}

func NewUserRegistry(users map[core.UserIDString]core.User) *UserRegistry {
	return &UserRegistry{byID: maps.Clone(users)}
}

func (r *UserRegistry) ByID(id core.UserIDString) (core.User, bool) {
	user, ok := r.byID[id]
	return user, ok
}

// ByLogin matches the login exactly.
func (r *UserRegistry) ByLogin(login string) (core.User, bool) {
	for _, id := range slices.Sorted(maps.Keys(r.byID)) {
		if user := r.byID[id]; user.Login == login {
			return user, true
		}
	}

	return core.User{}, false
}

func (r *UserRegistry) snapshot() map[core.UserIDString]core.User {
	return maps.Clone(r.byID)
}

/***** Catalog *****/

// Catalog holds the books and their shelf status.
type Catalog struct {
	books    map[core.BookIDString]core.Book
	statuses map[core.BookIDString]core.BookStatus
}

func NewCatalog(books map[core.BookIDString]core.Book, statuses map[core.BookIDString]core.BookStatus) *Catalog {
	return &Catalog{
		books:    maps.Clone(books),
		statuses: maps.Clone(statuses),
	}
}

// setLoanable flips the status flag. Freeing a book the catalog does not know is a no-op,
// so loans recorded against a since removed book can still be closed.
func (c *Catalog) setLoanable(bookID core.BookIDString, loanable bool) error {
	status, ok := c.statuses[bookID]
	if !ok {
		if _, known := c.books[bookID]; !known {
			if loanable {
				return nil
			}

			return ErrUnknownBook
		}

		status = core.BookStatus{BookID: bookID}
	}

	status.Loanable = loanable
	c.statuses[bookID] = status

	return nil
}

func (c *Catalog) clone() *Catalog {
	return NewCatalog(c.books, c.statuses)
}

func (c *Catalog) snapshot() (map[core.BookIDString]core.Book, map[core.BookIDString]core.BookStatus) {
	return maps.Clone(c.books), maps.Clone(c.statuses)
}

/***** Ledger *****/

// Ledger holds all loan records in insertion order and the loan ID counter.
type Ledger struct {
	records []core.LoanRecord
	seq     uint
}

// NewLedger sets the counter to the higher of the persisted value and the highest numeric loan ID.
func NewLedger(records []core.LoanRecord, persistedSeq uint) *Ledger {
	seq := persistedSeq

	for _, record := range records {
		if n, ok := core.LoanSequenceOf(record.LoanID); ok && n > seq {
			seq = n
		}
	}

	return &Ledger{records: slices.Clone(records), seq: seq}
}

func (l *Ledger) open(record core.LoanRecord) error {
	if l.indexOf(record.LoanID) >= 0 {
		return ErrDuplicateLoan
	}

	l.records = append(l.records, record)

	if n, ok := core.LoanSequenceOf(record.LoanID); ok && n > l.seq {
		l.seq = n
	}

	return nil
}

func (l *Ledger) renew(loanID core.LoanIDString, dueDate time.Time, renewals int) error {
	i := l.indexOf(loanID)
	if i < 0 {
		return ErrUnknownLoan
	}

	l.records[i].DueDate = dueDate
	l.records[i].Renewals = renewals

	return nil
}

func (l *Ledger) close(loanID core.LoanIDString, returnDate time.Time, fine decimal.Decimal) (core.BookIDString, error) {
	i := l.indexOf(loanID)
	if i < 0 {
		return "", ErrUnknownLoan
	}

	l.records[i].Return = core.ReturnedOn{Date: returnDate}
	l.records[i].Fine = fine

	return l.records[i].BookID, nil
}

func (l *Ledger) indexOf(loanID core.LoanIDString) int {
	return slices.IndexFunc(l.records, func(r core.LoanRecord) bool {
		return r.LoanID == loanID
	})
}

func (l *Ledger) clone() *Ledger {
	return &Ledger{records: slices.Clone(l.records), seq: l.seq}
}

func (l *Ledger) snapshot() ([]core.LoanRecord, uint) {
	return slices.Clone(l.records), l.seq
}
