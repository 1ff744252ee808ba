// Package createloan implements the Create Loan use case: a patron borrows a loanable book.
//
// Decide is a pure function over a LibraryState snapshot. The CommandHandler runs it inside
// the Library's critical section, so the new loan record and the book status flip happen
// together, and then persists the outcome.
package createloan
