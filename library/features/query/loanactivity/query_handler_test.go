package loanactivity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/eventstore/memengine"
	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/features/command/createloan"
	"github.com/softlib/loantracker/library/features/command/renewloan"
	"github.com/softlib/loantracker/library/features/command/returnloan"
	"github.com/softlib/loantracker/library/features/query/loanactivity"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_QueryHandler_Handle_ActivityOfBook(t *testing.T) {
	// arrange
	ctx := context.Background()
	library, journal := givenActivity(t)
	handler := loanactivity.NewQueryHandler(library, journal)

	// act
	result, err := handler.Handle(ctx, loanactivity.BuildQuery(fixtures.Librarian, fixtures.BookPython, ""))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		core.LoanOpenedEventType,
		core.OpeningLoanFailedEventType,
		core.LoanRenewedEventType,
		core.LoanReturnedEventType,
	}, eventTypesOf(result))

	assert.Equal(t, fixtures.PatronMaria, result.Entries[1].ActorID)
	assert.True(t, result.Entries[1].Failed)
	assert.Contains(t, result.Entries[1].Summary, string(core.ReasonBookUnavailable))
	assert.Contains(t, result.Entries[3].Summary, "fine 0.00")

	for i := 1; i < len(result.Entries); i++ {
		assert.Greater(t, result.Entries[i].SequenceNumber, result.Entries[i-1].SequenceNumber)
	}
}

func Test_QueryHandler_Handle_ActivityOfPatronOnBook(t *testing.T) {
	// arrange
	library, journal := givenActivity(t)
	handler := loanactivity.NewQueryHandler(library, journal)

	// act
	result, err := handler.Handle(context.Background(), loanactivity.BuildQuery(fixtures.Librarian, fixtures.BookPython, fixtures.PatronMaria))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{core.OpeningLoanFailedEventType}, eventTypesOf(result))
}

func Test_QueryHandler_Handle_WholeJournal(t *testing.T) {
	library, journal := givenActivity(t)

	result, err := loanactivity.NewQueryHandler(library, journal).Handle(context.Background(), loanactivity.BuildQuery(fixtures.Librarian, "", ""))

	require.NoError(t, err)
	assert.Equal(t, 5, result.Count)
}

func Test_QueryHandler_Handle_RejectsPatron(t *testing.T) {
	// arrange
	library, journal := givenActivity(t)

	// act
	_, err := loanactivity.NewQueryHandler(library, journal).Handle(context.Background(), loanactivity.BuildQuery(fixtures.PatronJoao, fixtures.BookPython, ""))

	// assert
	reason, ok := core.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ReasonNotLibrarian, reason)
}

// givenActivity journals: Joao borrows L001, Maria fails to borrow L001, Joao renews and returns L001,
// Maria borrows L002.
func givenActivity(t *testing.T) (*shell.Library, memengine.EventStore) {
	t.Helper()

	ctx := context.Background()
	journal, err := memengine.NewEventStore()
	require.NoError(t, err)

	library := fixtures.Library(t, fixtures.State())
	persistence := shell.NewPersistence(shell.WithJournal(journal))

	create := createloan.NewCommandHandler(library, persistence)
	renew := renewloan.NewCommandHandler(library, persistence)
	ret := returnloan.NewCommandHandler(library, persistence)

	_, err = create.Handle(ctx, createloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1)))
	require.NoError(t, err)
	_, err = create.Handle(ctx, createloan.BuildCommand(fixtures.PatronMaria, fixtures.BookPython, fixtures.Date(2025, 12, 2)))
	require.Error(t, err)
	_, err = renew.Handle(ctx, renewloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 3)))
	require.NoError(t, err)
	_, err = ret.Handle(ctx, returnloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 4)))
	require.NoError(t, err)
	_, err = create.Handle(ctx, createloan.BuildCommand(fixtures.PatronMaria, fixtures.BookOOP, fixtures.Date(2025, 12, 5)))
	require.NoError(t, err)

	return library, journal
}

func eventTypesOf(result loanactivity.LoanActivity) []string {
	types := make([]string, 0, result.Count)
	for _, entry := range result.Entries {
		types = append(types, entry.EventType)
	}

	return types
}
