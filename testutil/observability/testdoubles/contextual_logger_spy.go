package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/softlib/loantracker/eventstore"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value following key in Args, formatted with %v.
func (r LogRecord) Attr(key string) (string, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return fmt.Sprintf("%v", r.Args[i+1]), true
		}
	}

	return "", false
}

// ContextualLoggerSpy captures calls to both logger interfaces.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) Debug(msg string, args ...any) {
	s.record(context.Background(), "debug", msg, args)
}

func (s *ContextualLoggerSpy) Info(msg string, args ...any) {
	s.record(context.Background(), "info", msg, args)
}

func (s *ContextualLoggerSpy) Warn(msg string, args ...any) {
	s.record(context.Background(), "warn", msg, args)
}

func (s *ContextualLoggerSpy) Error(msg string, args ...any) {
	s.record(context.Background(), "error", msg, args)
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Context: ctx,
	})
}

// Records returns a copy of all captured records at the level, or all records for an empty level.
func (s *ContextualLoggerSpy) Records(level string) []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []LogRecord
	for _, r := range s.records {
		if level == "" || r.Level == level {
			records = append(records, r)
		}
	}

	return records
}

// Find returns the first record with the level and message.
func (s *ContextualLoggerSpy) Find(level, message string) (LogRecord, bool) {
	for _, r := range s.Records(level) {
		if r.Message == message {
			return r, true
		}
	}

	return LogRecord{}, false
}

func (s *ContextualLoggerSpy) HasLog(level, message string) bool {
	_, ok := s.Find(level, message)
	return ok
}

func (s *ContextualLoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

var (
	_ eventstore.ContextualLogger = (*ContextualLoggerSpy)(nil)
	_ eventstore.Logger           = (*ContextualLoggerSpy)(nil)
)
