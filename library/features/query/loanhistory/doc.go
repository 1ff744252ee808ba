// Package loanhistory implements the librarian's Full History query: every loan record
// of the ledger, newest first, with the book title.
package loanhistory
