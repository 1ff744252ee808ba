// Package returnloan implements the Return Loan use case: a patron brings a book back,
// the loan is closed and the fine for overdue days is fixed.
package returnloan
