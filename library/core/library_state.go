package core

// LibraryState is a deep-copied snapshot of users, catalog and ledger handed to Decide functions and projections.
type LibraryState struct {
	Policy   Policy
	Users    map[UserIDString]User
	Books    map[BookIDString]Book
	Statuses map[BookIDString]BookStatus
	Loans    []LoanRecord
	LoanSeq  uint

	// Revision counts the decisions applied by the owning library. Loaded records have zero.
	Revision uint64
}

func (s LibraryState) User(id UserIDString) (User, bool) {
	user, ok := s.Users[id]
	return user, ok
}

func (s LibraryState) Book(id BookIDString) (Book, bool) {
	book, ok := s.Books[id]
	return book, ok
}

func (s LibraryState) Status(id BookIDString) (BookStatus, bool) {
	status, ok := s.Statuses[id]
	return status, ok
}

// TitleOf returns the book title or UnknownBookTitle.
func (s LibraryState) TitleOf(id BookIDString) string {
	if book, ok := s.Books[id]; ok {
		return book.Title
	}

	return UnknownBookTitle
}

// OpenLoansOf returns the patron's open loans in ledger order.
func (s LibraryState) OpenLoansOf(patronID UserIDString) []LoanRecord {
	var loans []LoanRecord

	for _, loan := range s.Loans {
		if loan.IsOpen() && loan.PatronID == patronID {
			loans = append(loans, loan)
		}
	}

	return loans
}

// OpenLoanOnBook returns the open loan referencing the book, if any.
func (s LibraryState) OpenLoanOnBook(bookID BookIDString) (LoanRecord, bool) {
	for _, loan := range s.Loans {
		if loan.IsOpen() && loan.BookID == bookID {
			return loan, true
		}
	}

	return LoanRecord{}, false
}

// OpenLoanFor returns the open loan of the patron on the book, if any.
func (s LibraryState) OpenLoanFor(patronID UserIDString, bookID BookIDString) (LoanRecord, bool) {
	loan, ok := s.OpenLoanOnBook(bookID)
	if !ok || loan.PatronID != patronID {
		return LoanRecord{}, false
	}

	return loan, true
}

// NextLoanID is the ID the next opened loan will get.
func (s LibraryState) NextLoanID() LoanIDString {
	return FormatLoanID(s.LoanSeq + 1)
}
