package allbooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/features/query/allbooks"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_ProjectCatalog_DerivesBorrowedFromOpenLoans(t *testing.T) {
	// arrange
	state := fixtures.WithOpenLoan(fixtures.State(), fixtures.PatronJoao, fixtures.BookOOP, fixtures.Date(2025, 12, 1))
	state = fixtures.WithClosedLoan(state, fixtures.PatronMaria, fixtures.BookPython, fixtures.Date(2025, 11, 1), fixtures.Date(2025, 11, 5), "0.00")

	// act
	result := allbooks.ProjectCatalog(state, allbooks.BuildQuery())

	// assert
	require.Equal(t, 4, result.Count)
	borrowed := make(map[string]bool)
	for _, entry := range result.Books {
		borrowed[entry.Book.ID] = entry.Borrowed
	}

	assert.Equal(t, map[string]bool{
		fixtures.BookPython:   false,
		fixtures.BookOOP:      true,
		fixtures.BookKnuth:    false,
		fixtures.BookSecurity: false,
	}, borrowed)
}

func Test_ProjectCatalog_MissingStatusIsZeroStatus(t *testing.T) {
	// arrange
	state := fixtures.State()
	delete(state.Statuses, fixtures.BookSecurity)

	// act
	result := allbooks.ProjectCatalog(state, allbooks.BuildQuery())

	// assert
	last := result.Books[len(result.Books)-1]
	assert.Equal(t, fixtures.BookSecurity, last.Book.ID)
	assert.Equal(t, core.BookStatus{BookID: fixtures.BookSecurity}, last.Status)
	assert.False(t, last.Status.Loanable)
}

func Test_QueryHandler_Handle_SortedByBookID(t *testing.T) {
	// arrange
	handler := allbooks.NewQueryHandler(fixtures.Library(t, fixtures.State()))

	// act
	result, err := handler.Handle(context.Background(), allbooks.BuildQuery())

	// assert
	require.NoError(t, err)
	ids := make([]string, 0, result.Count)
	for _, entry := range result.Books {
		ids = append(ids, entry.Book.ID)
	}
	assert.Equal(t, []string{fixtures.BookPython, fixtures.BookOOP, fixtures.BookKnuth, fixtures.BookSecurity}, ids)
}
