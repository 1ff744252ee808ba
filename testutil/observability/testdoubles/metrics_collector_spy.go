package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/softlib/loantracker/eventstore"
)

// MetricRecord is one captured metrics call. Duration is set for durations, Value for values.
type MetricRecord struct {
	Kind     string // "duration", "counter" or "value"
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures metrics calls. ContextualMetricsCollectorSpy wraps it for the context-aware interface.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	records []MetricRecord
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(MetricRecord{Kind: "duration", Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(MetricRecord{Kind: "counter", Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(MetricRecord{Kind: "value", Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) record(r MetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Labels = maps.Clone(r.Labels)
	s.records = append(s.records, r)
}

// Records returns the captured records for the metric.
func (s *MetricsCollectorSpy) Records(metric string) []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []MetricRecord
	for _, r := range s.records {
		if r.Metric == metric {
			records = append(records, r)
		}
	}

	return records
}

// Count returns how many records of the metric carry all the given labels.
func (s *MetricsCollectorSpy) Count(metric string, labels map[string]string) int {
	n := 0

	for _, r := range s.Records(metric) {
		if hasLabels(r.Labels, labels) {
			n++
		}
	}

	return n
}

func (s *MetricsCollectorSpy) Has(metric string, labels map[string]string) bool {
	return s.Count(metric, labels) > 0
}

func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

// ContextualMetricsCollectorSpy additionally records the contextual variants into the same records.
type ContextualMetricsCollectorSpy struct {
	*MetricsCollectorSpy
}

func NewContextualMetricsCollectorSpy() ContextualMetricsCollectorSpy {
	return ContextualMetricsCollectorSpy{MetricsCollectorSpy: NewMetricsCollectorSpy()}
}

func (s ContextualMetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s ContextualMetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s ContextualMetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

func hasLabels(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}

	return true
}

var (
	_ eventstore.MetricsCollector           = (*MetricsCollectorSpy)(nil)
	_ eventstore.ContextualMetricsCollector = ContextualMetricsCollectorSpy{}
)
