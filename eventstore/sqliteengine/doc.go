// Package sqliteengine is a journal engine backed by an embedded SQLite database.
//
// It uses the pure-Go modernc.org/sqlite driver, so the console can keep a durable
// journal next to its text files without an external database server. SQL is built
// with goqu's sqlite3 dialect and payload predicates use json_extract.
//
// Usage:
//
//	store, err := sqliteengine.Open(ctx, "data/journal.db")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	err = store.Append(ctx, filter, maxSeq, newEvent)
package sqliteengine
