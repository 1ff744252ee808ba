package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/softlib/loantracker/eventstore"
)

// SpanSpy is the SpanContext handed out by TracingCollectorSpy.
type SpanSpy struct {
	mu         sync.Mutex
	name       string
	status     string
	attributes map[string]string
}

func (c *SpanSpy) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpanSpy) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attributes[key] = value
}

// SpanRecord is a finished span: its name, final status and all attributes set on start, during and on finish.
type SpanRecord struct {
	Name       string
	Status     string
	Attributes map[string]string
}

// TracingCollectorSpy captures spans. Unfinished spans are not reported.
type TracingCollectorSpy struct {
	mu       sync.Mutex
	started  int
	finished []SpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	s.mu.Lock()
	s.started++
	s.mu.Unlock()

	return ctx, &SpanSpy{name: name, attributes: maps.Clone(attrs)}
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanSpy)
	if !ok {
		return
	}

	span.mu.Lock()
	record := SpanRecord{Name: span.name, Status: status, Attributes: maps.Clone(span.attributes)}
	span.mu.Unlock()

	if record.Attributes == nil {
		record.Attributes = make(map[string]string)
	}
	maps.Copy(record.Attributes, attrs)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = append(s.finished, record)
}

func (s *TracingCollectorSpy) StartedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.started
}

// Spans returns the finished spans with the name.
func (s *TracingCollectorSpy) Spans(name string) []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var spans []SpanRecord
	for _, r := range s.finished {
		if r.Name == name {
			spans = append(spans, r)
		}
	}

	return spans
}

var _ eventstore.TracingCollector = (*TracingCollectorSpy)(nil)
