package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.LoanOpenedEventType:
		return unmarshal[core.LoanOpened](storableEvent.PayloadJSON)

	case core.LoanRenewedEventType:
		return unmarshal[core.LoanRenewed](storableEvent.PayloadJSON)

	case core.LoanReturnedEventType:
		return unmarshal[core.LoanReturned](storableEvent.PayloadJSON)

	case core.FinesSettledEventType:
		return unmarshal[core.FinesSettled](storableEvent.PayloadJSON)

	case core.OpeningLoanFailedEventType:
		return unmarshal[core.OpeningLoanFailed](storableEvent.PayloadJSON)

	case core.RenewingLoanFailedEventType:
		return unmarshal[core.RenewingLoanFailed](storableEvent.PayloadJSON)

	case core.ReturningLoanFailedEventType:
		return unmarshal[core.ReturningLoanFailed](storableEvent.PayloadJSON)

	case core.SettlingFinesFailedEventType:
		return unmarshal[core.SettlingFinesFailed](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshal[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(E)

	err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payloadJSON, payload)
	if err != nil {
		return *new(E), errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
