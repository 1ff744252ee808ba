// Package renewloan implements the Renew Loan use case: a patron extends the due date of an
// open loan by the renewal period, a bounded number of times and never once overdue.
package renewloan
