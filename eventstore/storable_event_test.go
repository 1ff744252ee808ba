package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validPayloadJSON := []byte(`{"LoanID": "001"}`)
	validMetadataJSON := []byte(`{"ActorID": "C101"}`)

	tests := []struct {
		name         string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{name: "invalid payload JSON", payloadJSON: []byte(`{"LoanID": 001`), metadataJSON: validMetadataJSON, expectedErr: ErrInvalidPayloadJSON},
		{name: "invalid metadata JSON", payloadJSON: validPayloadJSON, metadataJSON: []byte(`{ActorID}`), expectedErr: ErrInvalidMetadataJSON},
		{name: "empty payload JSON", payloadJSON: []byte(``), metadataJSON: validMetadataJSON, expectedErr: ErrInvalidPayloadJSON},
		{name: "nil metadata JSON", payloadJSON: validPayloadJSON, metadataJSON: nil, expectedErr: ErrInvalidMetadataJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildStorableEvent("LoanOpened", time.Now(), tt.payloadJSON, tt.metadataJSON)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_BuildStorableEventWithEmptyMetadata(t *testing.T) {
	occurredAt := time.Date(2025, time.December, 1, 9, 0, 0, 0, time.UTC)

	event, err := BuildStorableEventWithEmptyMetadata("LoanOpened", occurredAt, []byte(`{"LoanID":"001"}`))

	require.NoError(t, err)
	assert.Equal(t, "LoanOpened", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.JSONEq(t, `{}`, string(event.MetadataJSON))
	assert.Zero(t, event.SequenceNumber)
}

func Test_StorableEvent_WithSequenceNumber(t *testing.T) {
	event, err := BuildStorableEventWithEmptyMetadata("LoanReturned", time.Now(), []byte(`{}`))
	require.NoError(t, err)

	stamped := event.WithSequenceNumber(42)

	assert.Equal(t, MaxSequenceNumberUint(42), stamped.SequenceNumber)
	assert.Zero(t, event.SequenceNumber)
}
