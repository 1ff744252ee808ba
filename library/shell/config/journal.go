package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/softlib/loantracker/eventstore/memengine"
	"github.com/softlib/loantracker/eventstore/postgresengine"
	"github.com/softlib/loantracker/eventstore/sqliteengine"
	"github.com/softlib/loantracker/library/shell"
)

const (
	postgresDriverName = "postgres"

	defaultMaxConnections    = int32(8)
	defaultMinConnections    = int32(1)
	defaultMaxOpenConns      = 8
	defaultMaxIdleConns      = 2
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

// Instrumentation is handed to every journal engine.
type Instrumentation struct {
	Logger           shell.Logger
	ContextualLogger shell.ContextualLogger
	Metrics          shell.MetricsCollector
	Tracing          shell.TracingCollector
}

// Closer releases what OpenJournal acquired.
type Closer func() error

func noopCloser() error { return nil }

// OpenJournal opens the configured journal backend. The caller must call the returned Closer.
func OpenJournal(ctx context.Context, cfg Config, ins Instrumentation) (shell.Journal, Closer, error) {
	switch cfg.Journal {
	case JournalMemory:
		journal, err := memengine.NewEventStore(memoryOptions(ins)...)
		if err != nil {
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		return journal, noopCloser, nil

	case JournalSQLite:
		journal, err := sqliteengine.Open(ctx, cfg.SQLiteFile(), sqliteOptions(cfg, ins)...)
		if err != nil {
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		return journal, journal.Close, nil

	case JournalPostgres:
		return openPostgresJournal(ctx, cfg, ins)

	default:
		return nil, nil, errors.Join(ErrOpeningJournalFailed, ErrUnknownJournalBackend)
	}
}

func openPostgresJournal(ctx context.Context, cfg Config, ins Instrumentation) (shell.Journal, Closer, error) {
	if cfg.PostgresDSN == "" {
		return nil, nil, errors.Join(ErrOpeningJournalFailed, ErrPostgresDSNMissing)
	}

	options := postgresOptions(cfg, ins)

	switch cfg.PostgresAdapter {
	case AdapterPGX:
		poolConfig, err := PostgresPGXPoolConfig(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		journal, err := postgresengine.NewEventStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		return migratePostgres(ctx, journal, func() error { pool.Close(); return nil })

	case AdapterSQL:
		db, err := PostgresSQLDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		journal, err := postgresengine.NewEventStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		return migratePostgres(ctx, journal, db.Close)

	case AdapterSQLX:
		db, err := PostgresSQLX(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		journal, err := postgresengine.NewEventStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, errors.Join(ErrOpeningJournalFailed, err)
		}

		return migratePostgres(ctx, journal, db.Close)

	default:
		return nil, nil, errors.Join(ErrOpeningJournalFailed, ErrUnknownPostgresAdapter)
	}
}

func migratePostgres(ctx context.Context, journal postgresengine.EventStore, closer Closer) (shell.Journal, Closer, error) {
	if err := journal.Migrate(ctx); err != nil {
		return nil, nil, errors.Join(ErrOpeningJournalFailed, err, closer())
	}

	return journal, closer, nil
}

// PostgresPGXPoolConfig parses the DSN and applies the pool defaults.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = defaultMaxConnections
	poolConfig.MinConns = defaultMinConnections
	poolConfig.MaxConnLifetime = defaultMaxConnLifetime
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return poolConfig, nil
}

// PostgresSQLDB opens a database/sql pool through lib/pq and pings it.
func PostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// PostgresSQLX opens an sqlx pool through lib/pq and pings it.
func PostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func memoryOptions(ins Instrumentation) []memengine.Option {
	var options []memengine.Option

	if ins.Logger != nil {
		options = append(options, memengine.WithLogger(ins.Logger))
	}

	if ins.ContextualLogger != nil {
		options = append(options, memengine.WithContextualLogger(ins.ContextualLogger))
	}

	if ins.Metrics != nil {
		options = append(options, memengine.WithMetrics(ins.Metrics))
	}

	if ins.Tracing != nil {
		options = append(options, memengine.WithTracing(ins.Tracing))
	}

	return options
}

func sqliteOptions(cfg Config, ins Instrumentation) []sqliteengine.Option {
	var options []sqliteengine.Option

	if cfg.JournalTable != "" {
		options = append(options, sqliteengine.WithTableName(cfg.JournalTable))
	}

	if ins.Logger != nil {
		options = append(options, sqliteengine.WithLogger(ins.Logger))
	}

	if ins.ContextualLogger != nil {
		options = append(options, sqliteengine.WithContextualLogger(ins.ContextualLogger))
	}

	if ins.Metrics != nil {
		options = append(options, sqliteengine.WithMetrics(ins.Metrics))
	}

	if ins.Tracing != nil {
		options = append(options, sqliteengine.WithTracing(ins.Tracing))
	}

	return options
}

func postgresOptions(cfg Config, ins Instrumentation) []postgresengine.Option {
	var options []postgresengine.Option

	if cfg.JournalTable != "" {
		options = append(options, postgresengine.WithTableName(cfg.JournalTable))
	}

	if ins.Logger != nil {
		options = append(options, postgresengine.WithLogger(ins.Logger))
	}

	if ins.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(ins.ContextualLogger))
	}

	if ins.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(ins.Metrics))
	}

	if ins.Tracing != nil {
		options = append(options, postgresengine.WithTracing(ins.Tracing))
	}

	return options
}
