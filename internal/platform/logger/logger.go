package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/guto-escola/guto-api/internal/config"
)

// Option customises the logger built by Setup.
type Option func(*options)

type options struct {
	out      io.Writer
	reporter Reporter
}

// WithOutput sends log records to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithReporter forwards ERROR records to r in addition to the JSON output.
func WithReporter(r Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// ParseLevel maps a configured level name to a slog.Level. The second
// return value is false for unknown names, which map to info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger with the
// appropriate log level and sets it as the default logger for the application.
func Setup(cfg config.ServerConfig, opts ...Option) (*slog.Logger, error) {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	var handler slog.Handler = slog.NewJSONHandler(o.out, &slog.HandlerOptions{Level: level})
	if o.reporter != nil {
		handler = NewReportingHandler(handler, o.reporter)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
