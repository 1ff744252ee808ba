package availablebooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/features/query/availablebooks"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_ProjectAvailableBooks_ExcludesNotLoanableAndLentBooks(t *testing.T) {
	// arrange
	state := fixtures.WithOpenLoan(fixtures.State(), fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1))

	// act
	result := availablebooks.ProjectAvailableBooks(state, availablebooks.BuildQuery())

	// assert
	assert.Equal(t, []string{fixtures.BookOOP, fixtures.BookSecurity}, bookIDsOf(result))
	assert.Equal(t, 2, result.Count)
}

func Test_ProjectAvailableBooks_IgnoresStaleLoanableFlag(t *testing.T) {
	// arrange
	state := fixtures.WithOpenLoan(fixtures.State(), fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1))
	status := state.Statuses[fixtures.BookPython]
	status.Loanable = true
	state.Statuses[fixtures.BookPython] = status

	// act
	result := availablebooks.ProjectAvailableBooks(state, availablebooks.BuildQuery())

	// assert
	assert.NotContains(t, bookIDsOf(result), fixtures.BookPython)
}

func Test_QueryHandler_Handle(t *testing.T) {
	// arrange
	handler := availablebooks.NewQueryHandler(fixtures.Library(t, fixtures.State()))

	// act
	result, err := handler.Handle(context.Background(), availablebooks.BuildQuery())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{fixtures.BookPython, fixtures.BookOOP, fixtures.BookSecurity}, bookIDsOf(result))
}

func Test_QueryHandler_Handle_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := availablebooks.NewQueryHandler(fixtures.Library(t, fixtures.State())).Handle(ctx, availablebooks.BuildQuery())

	assert.ErrorIs(t, err, context.Canceled)
}

func bookIDsOf(result availablebooks.AvailableBooks) []string {
	ids := make([]string, 0, len(result.Books))
	for _, info := range result.Books {
		ids = append(ids, info.Book.ID)
	}

	return ids
}
