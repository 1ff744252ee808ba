package shell_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_StorableEventsFrom_KeepsFineAndChainsMetadata(t *testing.T) {
	// arrange
	loan := core.LoanRecord{LoanID: "004", PatronID: fixtures.PatronJoao, BookID: fixtures.BookOOP, DueDate: fixtures.Date(2025, 12, 8)}
	today := fixtures.Date(2025, 12, 11)
	events := core.DomainEvents{
		core.BuildFinesSettled(loan, today, decimal.RequireFromString("1.50"), today),
		core.BuildLoanReturned(loan, today, decimal.Zero, today),
	}

	// act
	storableEvents, err := shell.StorableEventsFrom(events, fixtures.PatronJoao)
	require.NoError(t, err)
	envelopes, err := shell.EventEnvelopesFrom(storableEvents)
	require.NoError(t, err)

	// assert
	require.Len(t, envelopes, 2)
	settled, ok := envelopes[0].DomainEvent.(core.FinesSettled)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("1.50").Equal(settled.Fine))
	assert.Equal(t, today, settled.ReturnDate)
	assert.Equal(t, envelopes[0].EventMetadata.MessageID, envelopes[1].EventMetadata.CausationID)
	assert.Equal(t, envelopes[0].EventMetadata.CorrelationID, envelopes[1].EventMetadata.CorrelationID)
}

func Test_StorableEventFrom_PayloadCarriesPredicateFields(t *testing.T) {
	rejection := core.Reject(core.ReasonNotFound, "no open loan")
	event := core.BuildReturningLoanFailed(fixtures.PatronMaria, fixtures.BookSecurity, rejection, fixtures.Date(2025, 12, 2))

	storableEvent, err := shell.StorableEventFrom(event, shell.EventMetadata{})

	require.NoError(t, err)
	assert.Contains(t, string(storableEvent.PayloadJSON), `"BookID":"L004"`)
	assert.Contains(t, string(storableEvent.PayloadJSON), `"PatronID":"C102"`)
	assert.Contains(t, string(storableEvent.PayloadJSON), `"Reason":"NotFound"`)
}

func Test_DomainEventFrom_UnknownEventType(t *testing.T) {
	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata("BookBurned", fixtures.Date(2025, 1, 1), []byte(`{}`))
	require.NoError(t, err)

	_, err = shell.DomainEventFrom(storableEvent)

	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}
