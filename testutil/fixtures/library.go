package fixtures

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

const (
	PatronJoao  = "C101"
	PatronMaria = "C102"
	Librarian   = "B001"

	BookPython   = "L001"
	BookOOP      = "L002"
	BookKnuth    = "L003" // not loanable
	BookSecurity = "L004"
)

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// State returns two patrons, one librarian and four books without any loans.
func State() core.LibraryState {
	return core.LibraryState{
		Policy: core.DefaultPolicy(),
		Users: map[core.UserIDString]core.User{
			PatronJoao:  {ID: PatronJoao, Name: "João Silva", Role: core.RolePatron, Login: "jsilva", Secret: "12345"},
			PatronMaria: {ID: PatronMaria, Name: "Maria Souza", Role: core.RolePatron, Login: "msouza", Secret: "45678"},
			Librarian:   {ID: Librarian, Name: "Lucas Ferreira", Role: core.RoleLibrarian, Login: "lferreira", Secret: "99999"},
		},
		Books: map[core.BookIDString]core.Book{
			BookPython:   {ID: BookPython, Title: "Python para Todos", Author: "Guido van Rossum"},
			BookOOP:      {ID: BookOOP, Title: "Introdução à POO", Author: "Grady Booch"},
			BookKnuth:    {ID: BookKnuth, Title: "A Arte de Programar", Author: "Donald Knuth"},
			BookSecurity: {ID: BookSecurity, Title: "Fundamentos de Cibersegurança", Author: "Bruce Schneier"},
		},
		Statuses: map[core.BookIDString]core.BookStatus{
			BookPython:   {BookID: BookPython, Location: "A01, Estante 1", Condition: "Bom", Loanable: true},
			BookOOP:      {BookID: BookOOP, Location: "A02, Estante 1", Condition: "Novo", Loanable: true},
			BookKnuth:    {BookID: BookKnuth, Location: "B01, Armário 3", Condition: "Desgastado", Loanable: false},
			BookSecurity: {BookID: BookSecurity, Location: "B02, Estante 2", Condition: "Bom", Loanable: true},
		},
	}
}

// WithBooks adds loanable books "X001".."Xnnn" to the state.
func WithBooks(state core.LibraryState, count int) core.LibraryState {
	for i := 1; i <= count; i++ {
		id := "X" + core.FormatLoanID(uint(i))
		state.Books[id] = core.Book{ID: id, Title: "Extra " + id, Author: "Anon"}
		state.Statuses[id] = core.BookStatus{BookID: id, Location: "Z", Condition: "Bom", Loanable: true}
	}

	return state
}

// WithOpenLoan records an open loan with the default 7 day period and marks the book not loanable.
func WithOpenLoan(state core.LibraryState, patronID, bookID string, loanDate time.Time) core.LibraryState {
	state.LoanSeq++
	state.Loans = append(state.Loans, core.LoanRecord{
		LoanID:   core.FormatLoanID(state.LoanSeq),
		PatronID: patronID,
		BookID:   bookID,
		LoanDate: loanDate,
		DueDate:  core.AddDays(loanDate, state.Policy.InitialLoanPeriodDays),
		Return:   core.StillOpen{},
		Fine:     decimal.Zero,
	})

	status := state.Statuses[bookID]
	status.BookID = bookID
	status.Loanable = false
	state.Statuses[bookID] = status

	return state
}

// WithClosedLoan records a returned loan with the given fine.
func WithClosedLoan(state core.LibraryState, patronID, bookID string, loanDate, returnDate time.Time, fine string) core.LibraryState {
	state.LoanSeq++
	state.Loans = append(state.Loans, core.LoanRecord{
		LoanID:   core.FormatLoanID(state.LoanSeq),
		PatronID: patronID,
		BookID:   bookID,
		LoanDate: loanDate,
		DueDate:  core.AddDays(loanDate, state.Policy.InitialLoanPeriodDays),
		Return:   core.ReturnedOn{Date: returnDate},
		Fine:     decimal.RequireFromString(fine),
	})

	return state
}

// WithFineMode switches the policy's fine mode.
func WithFineMode(state core.LibraryState, mode core.FineMode) core.LibraryState {
	state.Policy.FineMode = mode
	return state
}

// Library builds a shell.Library from the state using the state's policy.
func Library(t *testing.T, state core.LibraryState) *shell.Library {
	t.Helper()

	library, err := shell.NewLibrary(state.Policy, state)
	require.NoError(t, err)

	return library
}

// OpenLoansPerBook counts open loans by book.
func OpenLoansPerBook(state core.LibraryState) map[core.BookIDString]int {
	counts := make(map[core.BookIDString]int)

	for _, loan := range state.Loans {
		if loan.IsOpen() {
			counts[loan.BookID]++
		}
	}

	return counts
}
