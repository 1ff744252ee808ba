// Package patronloans implements the My Loans query use case.
//
// For the session patron it returns every open loan with the book title, whether the loan
// is overdue and the fine accrued so far, plus the total of those fines.
package patronloans
