// Package postgresengine is the PostgreSQL journal engine for deployments that share one ledger
// journal between several console instances.
//
// It runs on a pgx pool, a database/sql handle (lib/pq) or a sqlx handle. Appends are a single
// INSERT ... SELECT guarded by a CTE that recomputes the stream's highest sequence number, so the
// optimistic concurrency check and the write happen atomically inside Postgres.
//
// Migrate creates the table (default name loan_events) with a GIN index on the payload,
// which serves the @> predicates of the filters.
//
// Usage:
//
//	pool, _ := pgxpool.NewWithConfig(ctx, pgxConfig)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
//	_ = store.Migrate(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
package postgresengine
