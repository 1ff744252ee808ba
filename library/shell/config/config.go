package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
)

// EnvPrefix is prepended to every variable name of Config.
const EnvPrefix = "LOANS_"

const (
	JournalMemory   = "memory"
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"

	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"

	defaultSQLiteFile = "journal.db"
)

var (
	ErrInvalidConfig            = errors.New("invalid configuration")
	ErrUnknownJournalBackend    = errors.New("unknown journal backend")
	ErrUnknownPostgresAdapter   = errors.New("unknown postgres adapter")
	ErrPostgresDSNMissing       = errors.New("postgres journal requires LOANS_POSTGRES_DSN")
	ErrOpeningJournalFailed     = errors.New("opening journal failed")
	ErrObservabilitySetupFailed = errors.New("observability setup failed")
)

// Config is read from the environment, see Load.
type Config struct {
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	InitialLoanPeriodDays   int             `env:"INITIAL_LOAN_DAYS" envDefault:"7"`
	RenewalPeriodDays       int             `env:"RENEWAL_DAYS" envDefault:"7"`
	MaxRenewals             int             `env:"MAX_RENEWALS" envDefault:"2"`
	MaxActiveLoansPerPatron int             `env:"MAX_ACTIVE_LOANS" envDefault:"5"`
	FinePerDay              decimal.Decimal `env:"FINE_PER_DAY" envDefault:"0.50"`
	FineMode                string          `env:"FINE_MODE" envDefault:"return-only"`

	Journal         string `env:"JOURNAL" envDefault:"memory"`
	JournalTable    string `env:"JOURNAL_TABLE"`
	SQLitePath      string `env:"SQLITE_PATH"`
	PostgresDSN     string `env:"POSTGRES_DSN"`
	PostgresAdapter string `env:"POSTGRES_ADAPTER" envDefault:"pgx"`

	Observability      bool       `env:"OBSERVABILITY" envDefault:"false"`
	ServiceName        string     `env:"SERVICE_NAME" envDefault:"loantracker"`
	ServiceVersion     string     `env:"SERVICE_VERSION" envDefault:"dev"`
	OTLPTraceEndpoint  string     `env:"OTLP_TRACE_ENDPOINT" envDefault:"localhost:4317"`
	OTLPMetricEndpoint string     `env:"OTLP_METRIC_ENDPOINT" envDefault:"localhost:4317"`
	LogLevel           slog.Level `env:"LOG_LEVEL" envDefault:"WARN"`
}

// Load parses the LOANS_* variables and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the backend selection and the loan policy.
func (c Config) Validate() error {
	switch c.Journal {
	case JournalMemory, JournalSQLite:
	case JournalPostgres:
		switch c.PostgresAdapter {
		case AdapterPGX, AdapterSQL, AdapterSQLX:
		default:
			return errors.Join(ErrInvalidConfig, ErrUnknownPostgresAdapter, errors.New(c.PostgresAdapter))
		}

		if c.PostgresDSN == "" {
			return errors.Join(ErrInvalidConfig, ErrPostgresDSNMissing)
		}
	default:
		return errors.Join(ErrInvalidConfig, ErrUnknownJournalBackend, errors.New(c.Journal))
	}

	if _, err := c.Policy(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// Policy builds the lending rules of this deployment.
func (c Config) Policy() (core.Policy, error) {
	mode, err := core.ParseFineMode(c.FineMode)
	if err != nil {
		return core.Policy{}, err
	}

	policy := core.Policy{
		InitialLoanPeriodDays:   c.InitialLoanPeriodDays,
		RenewalPeriodDays:       c.RenewalPeriodDays,
		MaxRenewals:             c.MaxRenewals,
		MaxActiveLoansPerPatron: c.MaxActiveLoansPerPatron,
		FinePerDay:              c.FinePerDay,
		FineMode:                mode,
	}

	if err := policy.Validate(); err != nil {
		return core.Policy{}, err
	}

	return policy, nil
}

// SQLiteFile defaults to journal.db inside the data directory.
func (c Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}

	return filepath.Join(c.DataDir, defaultSQLiteFile)
}

// JournalDescription names the backend for logs, the DSN is never included.
func (c Config) JournalDescription() string {
	switch c.Journal {
	case JournalSQLite:
		return fmt.Sprintf("%s (%s)", c.Journal, c.SQLiteFile())
	case JournalPostgres:
		return fmt.Sprintf("%s (%s)", c.Journal, c.PostgresAdapter)
	default:
		return c.Journal
	}
}
