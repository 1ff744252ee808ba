package memengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/eventstore/internal/instrument"
)

const (
	engineName                = "memory"
	logMsgDecodePayloadFailed = "failed to decode payload of stored event"
)

// EventStore is the in-memory journal. The zero value is not usable, use NewEventStore.
type EventStore struct {
	mu     *sync.RWMutex
	events *eventstore.StorableEvents
	ins    instrument.Instrumentation
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.ins.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the EventStore.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.ins.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.ins.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the EventStore.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.ins.Tracing = collector
		return nil
	}
}

// NewEventStore creates an empty in-memory journal.
func NewEventStore(options ...Option) (EventStore, error) {
	es := EventStore{
		mu:     &sync.RWMutex{},
		events: &eventstore.StorableEvents{},
		ins:    instrument.Instrumentation{Engine: engineName},
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// Query returns the matching events in sequence order and the highest sequence number among them.
func (es EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, op := es.ins.Start(ctx, instrument.OperationQuery, nil)

	if err := ctx.Err(); err != nil {
		op.Failed("query canceled", instrument.ErrorTypeDatabase, err)
		return nil, 0, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	matching, maxSeq, err := es.matching(filter)
	if err != nil {
		op.Failed(logMsgDecodePayloadFailed, instrument.ErrorTypeStorableEvent, err)
		return nil, 0, err
	}

	op.Succeeded(len(matching), maxSeq)

	return matching, maxSeq, nil
}

// Append stores the events if the filter's stream still ends at expectedMaxSequenceNumber.
func (es EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	ctx, op := es.ins.Start(ctx, instrument.OperationAppend, map[string]string{
		instrument.AttrEventCount:  fmt.Sprintf("%d", len(allEvents)),
		instrument.AttrEventType:   event.EventType,
		instrument.AttrExpectedSeq: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	})

	if err := ctx.Err(); err != nil {
		op.Failed("append canceled", instrument.ErrorTypeDatabase, err)
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	_, currentMaxSeq, err := es.matching(filter)
	if err != nil {
		op.Failed(logMsgDecodePayloadFailed, instrument.ErrorTypeStorableEvent, err)
		return err
	}

	if currentMaxSeq != expectedMaxSequenceNumber {
		op.Conflicted(expectedMaxSequenceNumber, len(allEvents))
		return eventstore.ErrConcurrencyConflict
	}

	next := eventstore.MaxSequenceNumberUint(len(*es.events))
	for _, e := range allEvents {
		next++
		*es.events = append(*es.events, e.WithSequenceNumber(next))
	}

	op.Succeeded(len(allEvents), next)

	return nil
}

// matching expects the caller to hold the lock.
func (es EventStore) matching(filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error) {
	result := make(eventstore.StorableEvents, 0)
	maxSeq := eventstore.MaxSequenceNumberUint(0)

	for _, event := range *es.events {
		ok, err := Matches(filter, event)
		if err != nil {
			return nil, 0, err
		}

		if ok {
			result = append(result, event)
			maxSeq = event.SequenceNumber
		}
	}

	return result, maxSeq, nil
}

// Matches evaluates a filter against a single event the same way the SQL engines do.
func Matches(filter eventstore.Filter, event eventstore.StorableEvent) (bool, error) {
	if from := filter.OccurredFrom(); !from.IsZero() && event.OccurredAt.Before(from) {
		return false, nil
	}

	if until := filter.OccurredUntil(); !until.IsZero() && event.OccurredAt.After(until) {
		return false, nil
	}

	if len(filter.Items()) == 0 {
		return true, nil
	}

	var payload map[string]any
	if err := jsoniter.ConfigFastest.Unmarshal(event.PayloadJSON, &payload); err != nil {
		return false, errors.Join(eventstore.ErrBuildingStorableEventFailed, err)
	}

	for _, item := range filter.Items() {
		if matchesItem(item, event.EventType, payload) {
			return true, nil
		}
	}

	return false, nil
}

func matchesItem(item eventstore.FilterItem, eventType string, payload map[string]any) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), eventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	for _, predicate := range item.Predicates() {
		hit := payloadHas(payload, predicate)

		if item.AllPredicatesMustMatch() && !hit {
			return false
		}

		if !item.AllPredicatesMustMatch() && hit {
			return true
		}
	}

	return item.AllPredicatesMustMatch()
}

func payloadHas(payload map[string]any, predicate eventstore.FilterPredicate) bool {
	val, ok := payload[predicate.Key()]
	if !ok {
		return false
	}

	s, ok := val.(string)

	return ok && s == predicate.Val()
}
