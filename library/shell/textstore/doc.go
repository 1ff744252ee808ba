// Package textstore reads and writes the library records as ';'-separated text files.
//
// A data directory holds users.txt, books.txt, status.txt, loans.txt and ledger.seq.
// Lines starting with '#' and blank lines are ignored. Loading never aborts on a malformed
// line: the line is skipped and reported as a LineWarning. Saving rewrites every file
// through a temporary file and a rename, so a crash leaves either the old or the new file.
package textstore
