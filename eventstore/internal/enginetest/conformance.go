// Package enginetest holds the behavior every journal engine must show, as a reusable test suite.
package enginetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/eventstore"
)

// Journal is the engine surface under test.
type Journal interface {
	Query(ctx context.Context, filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Run executes the shared scenarios, calling newJournal for a fresh, empty engine each time.
func Run(t *testing.T, newJournal func(t *testing.T) Journal) {
	t.Run("empty journal reports sequence zero", func(t *testing.T) {
		journal := newJournal(t)

		events, maxSeq, err := journal.Query(context.Background(), bookFilter("B001"))

		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, eventstore.MaxSequenceNumberUint(0), maxSeq)
	})

	t.Run("appended event is returned by a matching predicate", func(t *testing.T) {
		journal := newJournal(t)
		filter := bookFilter("B001")
		event := givenEvent(t, "LoanOpened", "B001", "U001", day(1))

		require.NoError(t, journal.Append(context.Background(), filter, 0, event))

		events, maxSeq, err := journal.Query(context.Background(), filter)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "LoanOpened", events[0].EventType)
		assert.JSONEq(t, string(event.PayloadJSON), string(events[0].PayloadJSON))
		assert.True(t, event.OccurredAt.Equal(events[0].OccurredAt))
		assert.Equal(t, maxSeq, events[0].SequenceNumber)
		assert.NotZero(t, maxSeq)
	})

	t.Run("events of other streams are not returned", func(t *testing.T) {
		journal := newJournal(t)
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B002", "U002", day(1)))

		events, _, err := journal.Query(context.Background(), bookFilter("B002"))

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Contains(t, string(events[0].PayloadJSON), "B002")
	})

	t.Run("stale expected sequence is a concurrency conflict", func(t *testing.T) {
		journal := newJournal(t)
		filter := bookFilter("B001")
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))

		err := journal.Append(context.Background(), filter, 0, givenEvent(t, "LoanReturned", "B001", "U001", day(2)))

		assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
		events, _, queryErr := journal.Query(context.Background(), filter)
		require.NoError(t, queryErr)
		assert.Len(t, events, 1)
	})

	t.Run("unrelated stream growth does not conflict", func(t *testing.T) {
		journal := newJournal(t)
		filter := bookFilter("B001")
		_, maxSeq, err := journal.Query(context.Background(), filter)
		require.NoError(t, err)

		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B009", "U009", day(1)))

		err = journal.Append(context.Background(), filter, maxSeq, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))
		assert.NoError(t, err)
	})

	t.Run("multiple events are appended atomically in order", func(t *testing.T) {
		journal := newJournal(t)
		filter := patronFilter("U001")

		err := journal.Append(
			context.Background(),
			filter,
			0,
			givenEvent(t, "LoanFineSettled", "B001", "U001", day(3)),
			givenEvent(t, "LoanFineSettled", "B002", "U001", day(3)),
		)
		require.NoError(t, err)

		events, maxSeq, err := journal.Query(context.Background(), filter)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Contains(t, string(events[0].PayloadJSON), "B001")
		assert.Contains(t, string(events[1].PayloadJSON), "B002")
		assert.Equal(t, events[1].SequenceNumber, maxSeq)
		assert.Less(t, events[0].SequenceNumber, events[1].SequenceNumber)
	})

	t.Run("all predicates must match when requested", func(t *testing.T) {
		journal := newJournal(t)
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U002", day(2)))

		filter := eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf("LoanOpened").
			AndAllPredicatesOf(eventstore.P("BookID", "B001"), eventstore.P("PatronID", "U002")).
			Finalize()

		events, _, err := journal.Query(context.Background(), filter)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Contains(t, string(events[0].PayloadJSON), "U002")
	})

	t.Run("event types narrow the result", func(t *testing.T) {
		journal := newJournal(t)
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))
		givenAppended(t, journal, givenEvent(t, "LoanReturned", "B001", "U001", day(2)))

		filter := eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf("LoanReturned").
			Finalize()

		events, _, err := journal.Query(context.Background(), filter)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "LoanReturned", events[0].EventType)
	})

	t.Run("occurred-at window excludes events outside it", func(t *testing.T) {
		journal := newJournal(t)
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))
		givenAppended(t, journal, givenEvent(t, "LoanRenewed", "B001", "U001", day(5)))
		givenAppended(t, journal, givenEvent(t, "LoanReturned", "B001", "U001", day(9)))

		filter := eventstore.BuildEventFilter().
			Matching().
			AnyPredicateOf(eventstore.P("BookID", "B001")).
			OccurredBetween(day(2), day(8)).
			Finalize()

		events, _, err := journal.Query(context.Background(), filter)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "LoanRenewed", events[0].EventType)
	})

	t.Run("empty filter returns everything", func(t *testing.T) {
		journal := newJournal(t)
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B001", "U001", day(1)))
		givenAppended(t, journal, givenEvent(t, "LoanOpened", "B002", "U002", day(1)))

		events, _, err := journal.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}

func bookFilter(bookID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("BookID", bookID)).
		Finalize()
}

func patronFilter(patronID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("PatronID", patronID)).
		Finalize()
}

func day(n int) time.Time {
	return time.Date(2024, time.March, n, 10, 0, 0, 0, time.UTC)
}

func givenEvent(t *testing.T, eventType, bookID, patronID string, at time.Time) eventstore.StorableEvent {
	t.Helper()

	payload := fmt.Sprintf(`{"BookID":%q,"PatronID":%q,"Title":"O'Reilly \"quoted\""}`, bookID, patronID)
	event, err := eventstore.BuildStorableEvent(eventType, at, []byte(payload), []byte(`{"MessageID":"m-1"}`))
	require.NoError(t, err)

	return event
}

// givenAppended appends to the event's own book stream at its current end.
func givenAppended(t *testing.T, journal Journal, event eventstore.StorableEvent) {
	t.Helper()

	var payload struct{ BookID string }
	require.NoError(t, jsoniter.Unmarshal(event.PayloadJSON, &payload))

	filter := bookFilter(payload.BookID)
	_, maxSeq, err := journal.Query(context.Background(), filter)
	require.NoError(t, err)
	require.NoError(t, journal.Append(context.Background(), filter, maxSeq, event))
}
