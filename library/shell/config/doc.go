// Package config turns LOANS_* environment variables into the loan policy, the journal
// backend and the OpenTelemetry providers of the loan tracker.
//
// The journal can live in memory, in an embedded SQLite file or in PostgreSQL, reached
// through pgx.Pool, database/sql (lib/pq) or sqlx.
//
// This package is part of the shell (infrastructure) layer.
package config
