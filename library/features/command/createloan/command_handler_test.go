package createloan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/eventstore/memengine"
	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/features/command/createloan"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	ctx := context.Background()
	library := fixtures.Library(t, fixtures.State())
	journal := givenJournal(t)
	handler := createloan.NewCommandHandler(library, shell.NewPersistence(shell.WithJournal(journal)))

	// act
	result, err := handler.Handle(ctx, createloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "001", result.Loan.LoanID)
	assert.Equal(t, "Python para Todos", result.Title)
	assert.Equal(t, fixtures.Date(2025, 12, 8), result.Loan.DueDate)
	assert.False(t, result.HasWarning())

	state := library.Snapshot()
	assert.False(t, state.Statuses[fixtures.BookPython].Loanable)
	assert.Equal(t, 1, fixtures.OpenLoansPerBook(state)[fixtures.BookPython])

	events, _, err := journal.Query(ctx, createloan.BuildEventFilter(fixtures.PatronJoao, fixtures.BookPython))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.LoanOpenedEventType, events[0].EventType)
}

func Test_CommandHandler_Handle_SecondPatronIsRejected(t *testing.T) {
	// arrange
	ctx := context.Background()
	library := fixtures.Library(t, fixtures.State())
	journal := givenJournal(t)
	handler := createloan.NewCommandHandler(library, shell.NewPersistence(shell.WithJournal(journal)))
	_, err := handler.Handle(ctx, createloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1)))
	require.NoError(t, err)

	// act
	_, err = handler.Handle(ctx, createloan.BuildCommand(fixtures.PatronMaria, fixtures.BookPython, fixtures.Date(2025, 12, 2)))

	// assert
	assert.ErrorIs(t, err, core.ErrRejected)
	assert.Equal(t, 1, fixtures.OpenLoansPerBook(library.Snapshot())[fixtures.BookPython])

	events, _, err := journal.Query(ctx, createloan.BuildEventFilter(fixtures.PatronMaria, fixtures.BookPython))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, core.OpeningLoanFailedEventType, events[1].EventType)
}

func Test_CommandHandler_Handle_CanceledContextChangesNothing(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	library := fixtures.Library(t, fixtures.State())
	handler := createloan.NewCommandHandler(library, shell.NewPersistence())

	// act
	_, err := handler.Handle(ctx, createloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1)))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, library.Snapshot().Loans)
}

func givenJournal(t *testing.T) memengine.EventStore {
	t.Helper()

	journal, err := memengine.NewEventStore()
	require.NoError(t, err)

	return journal
}
