// Package allbooks implements the List All Books query use case: the whole catalog with
// shelf status and whether an open loan currently references each book.
package allbooks
