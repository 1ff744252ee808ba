package settlefines_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/features/command/settlefines"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_CommandHandler_Handle_ClosesLoansAndFreesBooks(t *testing.T) {
	// arrange
	library := fixtures.Library(t, givenTwoOverdueLoansAndOneCurrent(t))
	handler := settlefines.NewCommandHandler(library, shell.NewPersistence())

	// act
	result, err := handler.Handle(context.Background(), settlefines.BuildCommand(fixtures.PatronJoao, nil, today))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "2.00", result.Total.StringFixed(2))
	require.Len(t, result.Settled, 2)
	for _, loan := range result.Settled {
		assert.False(t, loan.IsOpen())
	}

	state := library.Snapshot()
	assert.True(t, state.Statuses[fixtures.BookPython].Loanable)
	assert.True(t, state.Statuses[fixtures.BookOOP].Loanable)
	assert.False(t, state.Statuses[fixtures.BookSecurity].Loanable)
	assert.Len(t, state.OpenLoansOf(fixtures.PatronJoao), 1)
}
