package settlefines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/features/command/settlefines"
	"github.com/softlib/loantracker/testutil/fixtures"
)

var today = fixtures.Date(2025, 12, 11)

func Test_Decide_Success_SettlesAllOverdueLoans(t *testing.T) {
	// arrange
	state := givenTwoOverdueLoansAndOneCurrent(t)

	// act
	result := settlefines.Decide(state, settlefines.BuildCommand(fixtures.PatronJoao, nil, today))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 2)

	first, ok := result.Events[0].(core.FinesSettled)
	require.True(t, ok)
	assert.Equal(t, "001", first.LoanID)
	assert.Equal(t, "1.50", first.Fine.StringFixed(2))
	assert.Equal(t, today, first.ReturnDate)

	second, ok := result.Events[1].(core.FinesSettled)
	require.True(t, ok)
	assert.Equal(t, "002", second.LoanID)
	assert.Equal(t, "0.50", second.Fine.StringFixed(2))
}

func Test_Decide_Success_SettlesSelectedLoan(t *testing.T) {
	result := settlefines.Decide(givenTwoOverdueLoansAndOneCurrent(t), settlefines.BuildCommand(fixtures.PatronJoao, []string{"002"}, today))

	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)
	assert.Equal(t, "002", result.Events[0].(core.FinesSettled).LoanID)
}

func Test_Decide_Error_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		loanIDs []string
	}{
		{name: "loan not overdue", loanIDs: []string{"003"}},
		{name: "one of several unknown", loanIDs: []string{"001", "999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := settlefines.Decide(givenTwoOverdueLoansAndOneCurrent(t), settlefines.BuildCommand(fixtures.PatronJoao, tt.loanIDs, today))

			assertRejected(t, result, core.ReasonNotFound)
		})
	}
}

func Test_Decide_Error_NoOverdueLoans(t *testing.T) {
	result := settlefines.Decide(givenTwoOverdueLoansAndOneCurrent(t), settlefines.BuildCommand(fixtures.PatronMaria, nil, today))

	assertRejected(t, result, core.ReasonNotFound)
}

func Test_Decide_Error_SettlementDisabled(t *testing.T) {
	state := fixtures.WithFineMode(givenTwoOverdueLoansAndOneCurrent(t), core.FineModeReturnOnly)

	result := settlefines.Decide(state, settlefines.BuildCommand(fixtures.PatronJoao, nil, today))

	assertRejected(t, result, core.ReasonSettlementDisabled)
}

func Test_Decide_Error_NotPatron(t *testing.T) {
	result := settlefines.Decide(givenTwoOverdueLoansAndOneCurrent(t), settlefines.BuildCommand(fixtures.Librarian, nil, today))

	assertRejected(t, result, core.ReasonNotPatron)
}

// givenTwoOverdueLoansAndOneCurrent has loans 001 (due 8 Dec), 002 (due 10 Dec) and 003 (due 16 Dec) for Joao.
func givenTwoOverdueLoansAndOneCurrent(t *testing.T) core.LibraryState {
	t.Helper()

	state := fixtures.WithFineMode(fixtures.State(), core.FineModePayable)
	state = fixtures.WithOpenLoan(state, fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1))
	state = fixtures.WithOpenLoan(state, fixtures.PatronJoao, fixtures.BookOOP, fixtures.Date(2025, 12, 3))
	state = fixtures.WithOpenLoan(state, fixtures.PatronJoao, fixtures.BookSecurity, fixtures.Date(2025, 12, 9))

	return state
}

func assertRejected(t *testing.T, result core.DecisionResult, expected core.RejectionReason) {
	t.Helper()

	reason, ok := core.ReasonOf(result.HasError())
	require.True(t, ok, "expected a rejection")
	assert.Equal(t, expected, reason)

	failed, ok := result.Events[0].(core.SettlingFinesFailed)
	require.True(t, ok)
	assert.Equal(t, expected, failed.Reason)
}
