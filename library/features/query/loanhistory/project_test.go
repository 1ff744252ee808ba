package loanhistory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/features/query/loanhistory"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_ProjectLoanHistory_NewestFirst(t *testing.T) {
	// arrange
	state := fixtures.WithClosedLoan(fixtures.State(), fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 11, 1), fixtures.Date(2025, 11, 5), "0.00")
	state = fixtures.WithOpenLoan(state, fixtures.PatronMaria, fixtures.BookOOP, fixtures.Date(2025, 12, 1))
	state = fixtures.WithOpenLoan(state, fixtures.PatronJoao, fixtures.BookSecurity, fixtures.Date(2025, 12, 1))

	// act
	result, err := loanhistory.ProjectLoanHistory(state, loanhistory.BuildQuery(fixtures.Librarian))

	// assert
	require.NoError(t, err)
	require.Equal(t, 3, result.Count)

	ids := make([]string, 0, result.Count)
	for _, entry := range result.Entries {
		ids = append(ids, entry.Record.LoanID)
	}
	assert.Equal(t, []string{"003", "002", "001"}, ids)
	assert.Equal(t, "Python para Todos", result.Entries[2].Title)
	assert.False(t, result.Entries[2].Record.IsOpen())
}

func Test_ProjectLoanHistory_RejectsPatron(t *testing.T) {
	// act
	_, err := loanhistory.ProjectLoanHistory(fixtures.State(), loanhistory.BuildQuery(fixtures.PatronJoao))

	// assert
	reason, ok := core.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ReasonNotLibrarian, reason)
}

func Test_QueryHandler_Handle_EmptyLedger(t *testing.T) {
	handler := loanhistory.NewQueryHandler(fixtures.Library(t, fixtures.State()))

	result, err := handler.Handle(context.Background(), loanhistory.BuildQuery(fixtures.Librarian))

	require.NoError(t, err)
	assert.Empty(t, result.Entries)
}
