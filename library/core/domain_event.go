package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent is a business fact produced by deciding a command.
type DomainEvent interface {
	// EventType returns the string identifier for this event type.
	EventType() EventTypeString

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// IsErrorEvent returns true if this event represents a rejected command.
	IsErrorEvent() bool
}
