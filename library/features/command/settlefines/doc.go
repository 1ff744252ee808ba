// Package settlefines implements the Settle Fines use case of the payable fine mode:
// a patron pays the fines of overdue loans, which closes them and frees the books.
package settlefines
