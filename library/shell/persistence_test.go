package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/eventstore/memengine"
	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_Persistence_AppendsEventsAndSavesSnapshot(t *testing.T) {
	// arrange
	journal := givenJournal(t)
	saver := &snapshotSaverSpy{}
	persistence := shell.NewPersistence(shell.WithJournal(journal), shell.WithSnapshots(saver))
	decision, state := givenOpenedLoan(t)

	// act
	result := persistence.Persist(context.Background(), bookFilter(fixtures.BookPython), fixtures.PatronJoao, decision, state)

	// assert
	assert.False(t, result.HasWarning())
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Len(t, saver.saved, 1)

	events, maxSeq, err := journal.Query(context.Background(), bookFilter(fixtures.BookPython))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.LoanOpenedEventType, events[0].EventType)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(1), maxSeq)

	metadata, err := shell.EventMetadataFrom(events[0])
	require.NoError(t, err)
	assert.Equal(t, fixtures.PatronJoao, metadata.ActorID)
	assert.Equal(t, metadata.CorrelationID, metadata.CausationID)
}

func Test_Persistence_RejectedDecisionIsJournaledButNotSnapshotted(t *testing.T) {
	// arrange
	journal := givenJournal(t)
	saver := &snapshotSaverSpy{}
	persistence := shell.NewPersistence(shell.WithJournal(journal), shell.WithSnapshots(saver))
	rejection := core.Reject(core.ReasonBookUnavailable, "book is not available")
	decision := core.ErrorDecision(core.BuildOpeningLoanFailed(fixtures.PatronJoao, fixtures.BookKnuth, rejection, time.Now()), rejection)

	// act
	result := persistence.Persist(context.Background(), bookFilter(fixtures.BookKnuth), fixtures.PatronJoao, decision, fixtures.State())

	// assert
	assert.False(t, result.HasWarning())
	assert.Empty(t, saver.saved)

	events, _, err := journal.Query(context.Background(), bookFilter(fixtures.BookKnuth))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.OpeningLoanFailedEventType, events[0].EventType)
}

func Test_Persistence_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	journal := &conflictingJournal{Journal: givenJournal(t), conflicts: 2}
	persistence := shell.NewPersistence(
		shell.WithJournal(journal),
		shell.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)),
	)
	decision, state := givenOpenedLoan(t)

	// act
	result := persistence.Persist(context.Background(), bookFilter(fixtures.BookPython), fixtures.PatronJoao, decision, state)

	// assert
	assert.False(t, result.HasWarning())
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Greater(t, result.TotalRetryDelay, time.Duration(0))
}

func Test_Persistence_FailuresBecomeWarnings(t *testing.T) {
	// arrange
	journal := &conflictingJournal{Journal: givenJournal(t), conflicts: 100}
	saver := &snapshotSaverSpy{err: errors.New("read-only file system")}
	persistence := shell.NewPersistence(
		shell.WithJournal(journal),
		shell.WithSnapshots(saver),
		shell.WithRetryOptions(shell.WithMaxAttempts(2), shell.WithBaseDelay(time.Millisecond)),
	)
	decision, state := givenOpenedLoan(t)

	// act
	result := persistence.Persist(context.Background(), bookFilter(fixtures.BookPython), fixtures.PatronJoao, decision, state)

	// assert
	require.True(t, result.HasWarning())
	assert.True(t, result.RetriesExhausted)
	assert.True(t, result.Warning.JournalFailed())
	assert.True(t, result.Warning.SnapshotFailed())
	assert.ErrorIs(t, result.Warning, eventstore.ErrConcurrencyConflict)
	assert.NotErrorIs(t, result.Warning, core.ErrRejected)
}

func Test_Persistence_StaleSnapshotDoesNotOverwriteNewerOne(t *testing.T) {
	// arrange
	saver := &snapshotSaverSpy{}
	persistence := shell.NewPersistence(shell.WithSnapshots(saver))
	library := fixtures.Library(t, fixtures.State())
	today := fixtures.Date(2025, 12, 1)

	older, olderState := givenLoanOpenedIn(t, library, fixtures.PatronJoao, fixtures.BookPython, today)
	newer, newerState := givenLoanOpenedIn(t, library, fixtures.PatronMaria, fixtures.BookOOP, today)

	// act
	newerResult := persistence.Persist(context.Background(), bookFilter(fixtures.BookOOP), fixtures.PatronMaria, newer, newerState)
	olderResult := persistence.Persist(context.Background(), bookFilter(fixtures.BookPython), fixtures.PatronJoao, older, olderState)

	// assert
	assert.False(t, newerResult.HasWarning())
	assert.False(t, olderResult.HasWarning())
	require.Len(t, saver.saved, 1)
	assert.Equal(t, newerState.Revision, saver.saved[0].Revision)
	assert.Len(t, saver.saved[0].Loans, 2)
}

func Test_Persistence_WithoutCollaborators(t *testing.T) {
	decision, state := givenOpenedLoan(t)

	result := shell.NewPersistence().Persist(context.Background(), bookFilter(fixtures.BookPython), fixtures.PatronJoao, decision, state)

	assert.False(t, result.HasWarning())
	assert.Equal(t, 0, result.RetryAttempts)
}

func givenJournal(t *testing.T) memengine.EventStore {
	t.Helper()

	journal, err := memengine.NewEventStore()
	require.NoError(t, err)

	return journal
}

func givenOpenedLoan(t *testing.T) (core.DecisionResult, core.LibraryState) {
	t.Helper()

	library := fixtures.Library(t, fixtures.State())
	today := fixtures.Date(2025, 12, 1)

	decision, state, err := library.Decide(func(s core.LibraryState) core.DecisionResult {
		return core.SuccessDecision(core.BuildLoanOpened(s.NextLoanID(), fixtures.PatronJoao, fixtures.BookPython, today, core.AddDays(today, 7), today))
	})
	require.NoError(t, err)

	return decision, state
}

func givenLoanOpenedIn(
	t *testing.T,
	library *shell.Library,
	patronID core.UserIDString,
	bookID core.BookIDString,
	today time.Time,
) (core.DecisionResult, core.LibraryState) {

	t.Helper()

	decision, state, err := library.Decide(func(s core.LibraryState) core.DecisionResult {
		return core.SuccessDecision(core.BuildLoanOpened(s.NextLoanID(), patronID, bookID, today, core.AddDays(today, 7), today))
	})
	require.NoError(t, err)

	return decision, state
}

func bookFilter(bookID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("BookID", bookID)).
		Finalize()
}

type snapshotSaverSpy struct {
	saved []core.LibraryState
	err   error
}

func (s *snapshotSaverSpy) Save(_ context.Context, state core.LibraryState) error {
	if s.err != nil {
		return s.err
	}

	s.saved = append(s.saved, state)

	return nil
}

// conflictingJournal fails the first appends with a concurrency conflict.
type conflictingJournal struct {
	shell.Journal
	conflicts int
}

func (j *conflictingJournal) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expected eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if j.conflicts > 0 {
		j.conflicts--
		return eventstore.ErrConcurrencyConflict
	}

	return j.Journal.Append(ctx, filter, expected, event, additionalEvents...)
}
