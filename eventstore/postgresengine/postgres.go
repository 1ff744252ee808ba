package postgresengine

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/eventstore/internal/instrument"
	"github.com/softlib/loantracker/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName = "loan_events"
	engineName            = "postgres"
	dialectPostgres       = "postgres"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgBuildStorableFailed    = "failed to build storable event from database row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgDBExecFailed           = "database execution failed during event append"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logActionQuery               = "query"
	logActionAppend              = "append"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"
	cteContext        = "context"
	cteVals           = "vals"
	aliasMaxSeq       = "max_seq"
	castText          = "?::text"
	castTimestamp     = "?::timestamp with time zone"
	castJsonb         = "?::jsonb"
	containsJsonb     = "? @> ?::jsonb"
)

//go:embed schema.sql
var schemaTemplate string

// EventStore is the Postgres journal.
type EventStore struct {
	db             adapters.DBAdapter
	eventTableName string
	ins            instrument.Instrumentation
}

// NewEventStoreFromPGXPool creates an EventStore on a pgx pool.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromSQLDB creates an EventStore on a database/sql handle.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates an EventStore on a sqlx handle.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (EventStore, error) {
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

// Migrate creates the journal table and its indexes if they do not exist.
func (es EventStore) Migrate(ctx context.Context) error {
	if _, err := es.db.Exec(ctx, fmt.Sprintf(schemaTemplate, es.eventTableName)); err != nil {
		return errors.Join(eventstore.ErrMigratingSchemaFailed, err)
	}

	return nil
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
	rows, err := es.db.Query(ctx, sqlQuery)
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
			occurredAt time.Time
			payload    []byte
			metadata   []byte
			seq        int64
		)

		if err := rows.Scan(&eventType, &occurredAt, &payload, &metadata, &seq); err != nil {
			op.Failed(logMsgScanRowFailed, instrument.ErrorTypeScan, err)
			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(eventType, occurredAt, payload, metadata)
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

// Append writes the events atomically if the filter's stream still ends at expectedMaxSequenceNumber.
//
// The filter should be the one used for the Query that preceded the decision.
// Appending several events uses a heavier statement, so only pass more than one when a
// decision really produces several events.
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

	var (
		sqlQuery string
		err      error
	)

	if len(allEvents) == 1 {
		sqlQuery, err = es.buildInsertQueryForSingleEvent(event, filter, expectedMaxSequenceNumber)
	} else {
		sqlQuery, err = es.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
	}

	if err != nil {
		op.Failed(logMsgBuildInsertQueryFailed, instrument.ErrorTypeBuildQuery, err, instrument.AttrEventCount, len(allEvents))
		return err
	}

	start := time.Now()
	result, err := es.db.Exec(ctx, sqlQuery)
	es.ins.LogStatement(ctx, logActionAppend, sqlQuery, time.Since(start))

	if err != nil {
		op.Failed(logMsgDBExecFailed, instrument.ErrorTypeDatabase, err, instrument.AttrQuery, sqlQuery)
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		op.Failed(logMsgRowsAffectedFailed, instrument.ErrorTypeRowsAffected, err)
		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, err)
	}

	if rowsAffected < int64(len(allEvents)) {
		op.Conflicted(expectedMaxSequenceNumber, len(allEvents))
		return eventstore.ErrConcurrencyConflict
	}

	op.Succeeded(len(allEvents), expectedMaxSequenceNumber+eventstore.MaxSequenceNumberUint(len(allEvents)))

	return nil
}

func (es EventStore) buildSelectQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt, err := es.addWhereClause(filter, selectStmt)
	if err != nil {
		return "", err
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) buildContextCTE(filter eventstore.Filter) (*goqu.SelectDataset, error) {
	cteStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	return es.addWhereClause(filter, cteStmt)
}

func (es EventStore) buildInsertQueryForSingleEvent(
	event eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, err := es.buildContextCTE(filter)
	if err != nil {
		return "", err
	}

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt.UTC()),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForMultipleEvents(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, err := es.buildContextCTE(filter)
	if err != nil {
		return "", err
	}

	var valuesStmt *goqu.SelectDataset
	for _, event := range events {
		row := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt.UTC()).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valuesStmt == nil {
			valuesStmt = row
			continue
		}

		valuesStmt = valuesStmt.UnionAll(row)
	}

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.T(cteVals).Col(colEventType),
					goqu.T(cteVals).Col(colOccurredAt),
					goqu.T(cteVals).Col(colPayload),
					goqu.T(cteVals).Col(colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) (*goqu.SelectDataset, error) {
	itemExpressions := make([]goqu.Expression, 0)

	for _, item := range filter.Items() {
		itemExpression := goqu.And()

		if len(item.EventTypes()) > 0 {
			itemExpression = itemExpression.Append(goqu.C(colEventType).In(item.EventTypes()))
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			document, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(
				map[string]string{predicate.Key(): predicate.Val()},
			)
			if err != nil {
				return nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
			}

			predicateExpressions = append(predicateExpressions, goqu.L(containsJsonb, goqu.C(colPayload), document))
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
		conditions = append(conditions, goqu.C(colOccurredAt).Gte(from.UTC()))
	}

	if until := filter.OccurredUntil(); !until.IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Lte(until.UTC()))
	}

	if len(conditions) == 0 {
		return selectStmt, nil
	}

	return selectStmt.Where(conditions...), nil
}
