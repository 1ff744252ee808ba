package renewloan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/features/command/renewloan"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_Decide_Success_ExtendsDueDate(t *testing.T) {
	// arrange
	state := givenLoanDueOn8December(t)
	command := renewloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 5))

	// act
	result := renewloan.Decide(state, command)

	// assert
	require.NoError(t, result.HasError())
	renewed, ok := result.Events[0].(core.LoanRenewed)
	require.True(t, ok)
	assert.Equal(t, fixtures.Date(2025, 12, 8), renewed.PreviousDueDate)
	assert.Equal(t, fixtures.Date(2025, 12, 15), renewed.DueDate)
	assert.Equal(t, 1, renewed.Renewals)
}

func Test_Decide_Success_DueTodayIsStillRenewable(t *testing.T) {
	result := renewloan.Decide(givenLoanDueOn8December(t), renewloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 8)))

	assert.NoError(t, result.HasError())
}

func Test_Decide_Error_AlreadyOverdue(t *testing.T) {
	result := renewloan.Decide(givenLoanDueOn8December(t), renewloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 9)))

	assertRejected(t, result, core.ReasonAlreadyOverdue)
}

func Test_Decide_Error_RenewalLimitReached(t *testing.T) {
	// arrange
	state := givenLoanDueOn8December(t)
	state.Loans[0].Renewals = state.Policy.MaxRenewals

	// act
	result := renewloan.Decide(state, renewloan.BuildCommand(fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1)))

	// assert
	assertRejected(t, result, core.ReasonRenewalLimitReached)
}

func Test_Decide_Error_NotFound(t *testing.T) {
	state := givenLoanDueOn8December(t)

	tests := []struct {
		name     string
		patronID string
		bookID   string
	}{
		{name: "book lent to someone else", patronID: fixtures.PatronMaria, bookID: fixtures.BookPython},
		{name: "book not lent", patronID: fixtures.PatronJoao, bookID: fixtures.BookOOP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renewloan.Decide(state, renewloan.BuildCommand(tt.patronID, tt.bookID, fixtures.Date(2025, 12, 2)))

			assertRejected(t, result, core.ReasonNotFound)
		})
	}
}

func Test_Decide_Error_NotPatronComesFirst(t *testing.T) {
	result := renewloan.Decide(givenLoanDueOn8December(t), renewloan.BuildCommand(fixtures.Librarian, fixtures.BookOOP, fixtures.Date(2025, 12, 2)))

	assertRejected(t, result, core.ReasonNotPatron)
}

func givenLoanDueOn8December(t *testing.T) core.LibraryState {
	t.Helper()

	return fixtures.WithOpenLoan(fixtures.State(), fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1))
}

func assertRejected(t *testing.T, result core.DecisionResult, expected core.RejectionReason) {
	t.Helper()

	reason, ok := core.ReasonOf(result.HasError())
	require.True(t, ok, "expected a rejection")
	assert.Equal(t, expected, reason)

	failed, ok := result.Events[0].(core.RenewingLoanFailed)
	require.True(t, ok)
	assert.Equal(t, expected, failed.Reason)
}
