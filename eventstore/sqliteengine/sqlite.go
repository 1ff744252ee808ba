package sqliteengine

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	_ "modernc.org/sqlite" // driver registration

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/eventstore/internal/instrument"
)

const (
	defaultEventTableName = "loan_events"
	engineName            = "sqlite"
	driverName            = "sqlite"
	dialectSQLite         = "sqlite3"
	memoryPath            = ":memory:"

	colSequenceNumber = "sequence_number"
	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	aliasMaxSeq       = "max_seq"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during event append"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgBuildStorableFailed    = "failed to build storable event from database row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgRollbackFailed         = "failed to roll back append transaction"
	logActionQuery               = "query"
	logActionAppend              = "append"
)

//go:embed schema.sql
var schemaTemplate string

// EventStore is the SQLite journal.
type EventStore struct {
	db             *sql.DB
	eventTableName string
	ins            instrument.Instrumentation
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the journal table name.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.ins.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the EventStore.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.ins.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.ins.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the EventStore.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.ins.Tracing = collector
		return nil
	}
}

// Open opens (or creates) the database file at path and applies the schema.
// The special path ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, options ...Option) (EventStore, error) {
	if strings.TrimSpace(path) == "" {
		return EventStore{}, errors.New("sqlite journal path is required")
	}

	dsn := memoryPath
	if path != memoryPath {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return EventStore{}, fmt.Errorf("open sqlite journal: %w", err)
	}

	// One connection serializes appends and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	es, err := NewEventStoreFromSQLDB(db, options...)
	if err != nil {
		_ = db.Close()
		return EventStore{}, err
	}

	if err := es.Migrate(ctx); err != nil {
		_ = db.Close()
		return EventStore{}, err
	}

	return es, nil
}

// NewEventStoreFromSQLDB wraps an already opened SQLite handle. Call Migrate before first use.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	es := EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
		ins:            instrument.Instrumentation{Engine: engineName},
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// Migrate creates the journal table and its index if they do not exist.
func (es EventStore) Migrate(ctx context.Context) error {
	if _, err := es.db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, es.eventTableName)); err != nil {
		return errors.Join(eventstore.ErrMigratingSchemaFailed, err)
	}

	return nil
}

// Close releases the database handle.
func (es EventStore) Close() error {
	if es.db == nil {
		return nil
	}

	return es.db.Close()
}

// Query retrieves the events matching the filter in sequence order
// together with the highest sequence number among them.
func (es EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, op := es.ins.Start(ctx, instrument.OperationQuery, nil)

	sqlQuery, err := es.buildSelectQuery(filter)
	if err != nil {
		op.Failed(logMsgBuildSelectQueryFailed, instrument.ErrorTypeBuildQuery, err)
		return nil, 0, err
	}

	start := time.Now()
	rows, err := es.db.QueryContext(ctx, sqlQuery)
	es.ins.LogStatement(ctx, logActionQuery, sqlQuery, time.Since(start))

	if err != nil {
		op.Failed(logMsgDBQueryFailed, instrument.ErrorTypeDatabase, err, instrument.AttrQuery, sqlQuery)
		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			es.ins.LogWarning(ctx, logMsgCloseRowsFailed, closeErr)
		}
	}()

	events := make(eventstore.StorableEvents, 0)
	maxSeq := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		var (
			eventType  string
			occurredAt int64
			payload    string
			metadata   string
			seq        int64
		)

		if err := rows.Scan(&eventType, &occurredAt, &payload, &metadata, &seq); err != nil {
			op.Failed(logMsgScanRowFailed, instrument.ErrorTypeScan, err)
			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(eventType, time.Unix(0, occurredAt).UTC(), []byte(payload), []byte(metadata))
		if err != nil {
			op.Failed(logMsgBuildStorableFailed, instrument.ErrorTypeStorableEvent, err, instrument.AttrEventType, eventType)
			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, err)
		}

		maxSeq = eventstore.MaxSequenceNumberUint(seq)
		events = append(events, event.WithSequenceNumber(maxSeq))
	}

	if err := rows.Err(); err != nil {
		op.Failed(logMsgScanRowFailed, instrument.ErrorTypeScan, err)
		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	op.Succeeded(len(events), maxSeq)

	return events, maxSeq, nil
}

// Append writes the events in one transaction, provided the filter's stream still ends
// at expectedMaxSequenceNumber. Otherwise it returns eventstore.ErrConcurrencyConflict.
func (es EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	ctx, op := es.ins.Start(ctx, instrument.OperationAppend, map[string]string{
		instrument.AttrEventCount:  fmt.Sprintf("%d", len(allEvents)),
		instrument.AttrEventType:   event.EventType,
		instrument.AttrExpectedSeq: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	})

	maxSeqQuery, err := es.buildMaxSequenceQuery(filter)
	if err != nil {
		op.Failed(logMsgBuildSelectQueryFailed, instrument.ErrorTypeBuildQuery, err)
		return err
	}

	insertQuery, err := es.buildInsertQuery(allEvents)
	if err != nil {
		op.Failed(logMsgBuildInsertQueryFailed, instrument.ErrorTypeBuildQuery, err)
		return err
	}

	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		op.Failed(logMsgDBExecFailed, instrument.ErrorTypeDatabase, err)
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			es.ins.LogWarning(ctx, logMsgRollbackFailed, rbErr)
		}
	}

	var currentMaxSeq int64
	if err := tx.QueryRowContext(ctx, maxSeqQuery).Scan(&currentMaxSeq); err != nil {
		rollback()
		op.Failed(logMsgDBQueryFailed, instrument.ErrorTypeDatabase, err, instrument.AttrQuery, maxSeqQuery)
		return errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	if eventstore.MaxSequenceNumberUint(currentMaxSeq) != expectedMaxSequenceNumber {
		rollback()
		op.Conflicted(expectedMaxSequenceNumber, len(allEvents))
		return eventstore.ErrConcurrencyConflict
	}

	start := time.Now()
	result, err := tx.ExecContext(ctx, insertQuery)
	es.ins.LogStatement(ctx, logActionAppend, insertQuery, time.Since(start))

	if err != nil {
		rollback()
		op.Failed(logMsgDBExecFailed, instrument.ErrorTypeDatabase, err, instrument.AttrQuery, insertQuery)
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		rollback()
		op.Failed(logMsgDBExecFailed, instrument.ErrorTypeRowsAffected, err)
		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, err)
	}

	if err := tx.Commit(); err != nil {
		op.Failed(logMsgDBExecFailed, instrument.ErrorTypeDatabase, err)
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	op.Succeeded(len(allEvents), eventstore.MaxSequenceNumberUint(lastID))

	return nil
}

func (es EventStore) buildSelectQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, err := es.addWhereClause(filter, selectStmt).ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) buildMaxSequenceQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0).As(aliasMaxSeq))

	sqlQuery, _, err := es.addWhereClause(filter, selectStmt).ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQuery(events eventstore.StorableEvents) (string, error) {
	rows := make([]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, goqu.Record{
			colEventType:  event.EventType,
			colOccurredAt: event.OccurredAt.UTC().UnixNano(),
			colPayload:    string(event.PayloadJSON),
			colMetadata:   string(event.MetadataJSON),
		})
	}

	sqlQuery, _, err := goqu.Dialect(dialectSQLite).
		Insert(es.eventTableName).
		Rows(rows...).
		ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	itemExpressions := make([]goqu.Expression, 0)

	for _, item := range filter.Items() {
		itemExpression := goqu.And()

		if len(item.EventTypes()) > 0 {
			itemExpression = itemExpression.Append(goqu.C(colEventType).In(item.EventTypes()))
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			predicateExpressions = append(
				predicateExpressions,
				goqu.L("json_extract(?, ?) = ?", goqu.C(colPayload), "$."+predicate.Key(), predicate.Val()),
			)
		}

		if len(predicateExpressions) > 0 {
			var predicates exp.ExpressionList
			if item.AllPredicatesMustMatch() {
				predicates = goqu.And(predicateExpressions...)
			} else {
				predicates = goqu.Or(predicateExpressions...)
			}

			itemExpression = itemExpression.Append(predicates)
		}

		itemExpressions = append(itemExpressions, itemExpression)
	}

	conditions := make([]goqu.Expression, 0)

	if len(itemExpressions) > 0 {
		conditions = append(conditions, goqu.Or(itemExpressions...))
	}

	if from := filter.OccurredFrom(); !from.IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Gte(from.UTC().UnixNano()))
	}

	if until := filter.OccurredUntil(); !until.IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Lte(until.UTC().UnixNano()))
	}

	if len(conditions) == 0 {
		return selectStmt
	}

	return selectStmt.Where(conditions...)
}
