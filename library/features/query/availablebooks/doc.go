// Package availablebooks implements the List Available Books query use case.
//
// It returns every book whose status is loanable and which no open loan references,
// sorted by book ID. This is a read-only projection of a library snapshot.
package availablebooks
