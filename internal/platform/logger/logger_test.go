package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guto-escola/guto-api/internal/config"
	"github.com/guto-escola/guto-api/internal/platform/logger"
)

type fakeReporter struct {
	mu       sync.Mutex
	messages []string
	extras   []map[string]interface{}
}

func (r *fakeReporter) MessageWithExtras(level string, msg string, extras map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, level+":"+msg)
	r.extras = append(r.extras, extras)
}

func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetup(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	l, err := logger.Setup(config.ServerConfig{LogLevel: "warn"}, logger.WithOutput(buf))
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())

	l.Info("dropped")
	l.Warn("kept", "class_id", "abc")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["class_id"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	l, err := logger.Setup(config.ServerConfig{LogLevel: "chatty"}, logger.WithOutput(buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestReportingHandlerForwardsErrorsOnly(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}
	reporter := &fakeReporter{}

	l, err := logger.Setup(config.ServerConfig{LogLevel: "debug"},
		logger.WithOutput(buf), logger.WithReporter(reporter))
	require.NoError(t, err)

	l = l.With("component", "enrollment_service")
	l.Info("student enrolled")
	l.WithGroup("request").Error("enroll failed",
		"error", errors.New("dial postgres://guto:secret@db:5432/guto"),
		"student_code", 42)

	require.Len(t, reporter.messages, 1)
	assert.Equal(t, "error:enroll failed", reporter.messages[0])

	extras := reporter.extras[0]
	assert.Equal(t, "enrollment_service", extras["component"])
	assert.Equal(t, int64(42), extras["request.student_code"])
	assert.NotContains(t, extras["request.error"], "secret")

	assert.Contains(t, buf.String(), "student enrolled")
	assert.Contains(t, buf.String(), "enroll failed")
}

func TestFromContext(t *testing.T) {
	restoreDefault(t)
	l, _ := logger.NewTestLogger()
	fallback, _ := logger.NewTestLogger()

	ctx := logger.WithLogger(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
	assert.Same(t, l, logger.FromContextOrDefault(ctx, fallback))

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}
