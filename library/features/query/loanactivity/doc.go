// Package loanactivity implements the librarian's Loan Activity query.
//
// Unlike the other queries it reads the event journal instead of the library snapshot,
// so it also shows rejected attempts. Events are selected with an eventstore.Filter on the
// BookID and/or PatronID payload fields and returned in journal order.
package loanactivity
