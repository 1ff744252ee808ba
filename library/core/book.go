package core

// Book is immutable once loaded.
type Book struct {
	ID     BookIDString
	Title  string
	Author string
}

// BookStatus is the shelf record of a book. Loanable is flipped by the ledger
// when a loan is opened (false) or closed (true).
type BookStatus struct {
	BookID    BookIDString
	Location  string
	Condition string
	Loanable  bool
}

// UnknownBookTitle is shown for loans that reference a book missing from the catalog.
const UnknownBookTitle = "Unknown book"
