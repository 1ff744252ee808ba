// Package adapters lets the Postgres journal run on pgxpool.Pool, *sql.DB (lib/pq) or *sqlx.DB
// behind one small DBAdapter interface.
package adapters
