package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/softlib/loantracker/eventstore/oteladapters"
)

type recordingLogger struct {
	embedded.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func Test_OTelLogger_EmitsSeverityBodyAndAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "journal append failed", "loan_id", "004", "attempts", 6, "dangling")

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "journal append failed", record.Body().AsString())

	attrs := map[string]string{}
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, map[string]string{"loan_id": "004", "attempts": "6"}, attrs)
}

func Test_OTelLogger_AllLevels(t *testing.T) {
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.ErrorContext(ctx, "e")

	require.Len(t, recorder.records, 3)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[2].Severity())
}

func Test_SlogBridgeLoggerWithHandler_WritesThroughHandler(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// act
	logger.InfoContext(context.Background(), "loan opened", "loan_id", "001")

	// assert
	assert.Contains(t, buf.String(), "loan opened")
	assert.Contains(t, buf.String(), "loan_id=001")
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("loantracker-test")

	assert.NotPanics(t, func() {
		logger.ErrorContext(context.Background(), "nothing is exported by the default provider")
	})
}
