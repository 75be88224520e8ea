package logger

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newCapturedLogger(level LogLevel) (*StdLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &StdLogger{
		logger: log.New(&buf, "", 0),
		level:  level,
	}, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{input: "debug", want: LevelDebug},
		{input: "INFO", want: LevelInfo},
		{input: "Warn", want: LevelWarn},
		{input: "WARNING", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "bogus", want: LevelInfo},
		{input: "", want: LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newCapturedLogger(LevelWarn)
	ctx := context.Background()

	l.Debug(ctx, "debug message")
	l.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "warn message")
	assert.Contains(t, buf.String(), "[WARN] warn message")
}

func TestFieldsAreSorted(t *testing.T) {
	l, buf := newCapturedLogger(LevelDebug)

	l.Info(context.Background(), "msg", map[string]interface{}{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})

	assert.Contains(t, buf.String(), "alpha=2 mango=3 zebra=1")
}

func TestErrorIncludesError(t *testing.T) {
	l, buf := newCapturedLogger(LevelDebug)

	l.Error(context.Background(), errors.New("boom"), "operation failed")

	out := buf.String()
	assert.Contains(t, out, "[ERROR] operation failed")
	assert.Contains(t, out, "error: boom")
}
