package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell/textstore"
)

var ErrDataDirNotEmpty = errors.New("data directory already holds records, refusing to seed")

// writeSeed saves the demo records into a data directory without a users file.
func writeSeed(ctx context.Context, store textstore.Store) error {
	if _, err := os.Stat(filepath.Join(store.Dir(), textstore.UsersFile)); err == nil {
		return ErrDataDirNotEmpty
	}

	return store.Save(ctx, seedState())
}

func seedState() core.LibraryState {
	day := func(d int) time.Time { return time.Date(2025, time.December, d, 0, 0, 0, 0, time.UTC) }

	return core.LibraryState{
		Users: map[core.UserIDString]core.User{
			"C101": {ID: "C101", Name: "João Silva", Role: core.RolePatron, Login: "jsilva", Secret: "12345"},
			"C102": {ID: "C102", Name: "Maria Souza", Role: core.RolePatron, Login: "msouza", Secret: "45678"},
			"B001": {ID: "B001", Name: "Lucas Ferreira", Role: core.RoleLibrarian, Login: "lferreira", Secret: "99999"},
		},
		Books: map[core.BookIDString]core.Book{
			"L001": {ID: "L001", Title: "Python para Todos", Author: "Guido van Rossum"},
			"L002": {ID: "L002", Title: "Introdução à POO", Author: "Grady Booch"},
			"L003": {ID: "L003", Title: "A Arte de Programar", Author: "Donald Knuth"},
			"L004": {ID: "L004", Title: "Fundamentos de Cibersegurança", Author: "Bruce Schneier"},
		},
		Statuses: map[core.BookIDString]core.BookStatus{
			"L001": {BookID: "L001", Location: "A01, Estante 1", Condition: "Bom", Loanable: true},
			"L002": {BookID: "L002", Location: "A02, Estante 1", Condition: "Novo", Loanable: true},
			"L003": {BookID: "L003", Location: "B01, Armário 3", Condition: "Desgastado", Loanable: false},
			"L004": {BookID: "L004", Location: "B02, Estante 2", Condition: "Bom", Loanable: true},
		},
		Loans: []core.LoanRecord{
			{LoanID: "001", PatronID: "C101", BookID: "L001", LoanDate: day(1), DueDate: day(8), Return: core.ReturnedOn{Date: day(9)}, Fine: decimal.Zero},
			{LoanID: "002", PatronID: "C102", BookID: "L002", LoanDate: day(3), DueDate: day(10), Return: core.ReturnedOn{Date: day(11)}, Fine: decimal.Zero},
			{LoanID: "003", PatronID: "C101", BookID: "L004", LoanDate: day(4), DueDate: day(11), Return: core.ReturnedOn{Date: day(12)}, Fine: decimal.Zero, Renewals: 1},
		},
		LoanSeq: 3,
	}
}
