package logger

import (
	"context"
	"log/slog"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/guto-escola/guto-api/internal/config"
	"github.com/guto-escola/guto-api/internal/redact"
)

// Reporter receives error-level records. *rollbar.Client satisfies it.
type Reporter interface {
	MessageWithExtras(level string, msg string, extras map[string]interface{})
}

// NewRollbarClient builds a Rollbar client from configuration. It returns
// nil when no token is configured.
func NewRollbarClient(cfg config.RollbarConfig) *rollbar.Client {
	if !cfg.Enabled() {
		return nil
	}
	client := rollbar.New(cfg.Token, cfg.Environment, cfg.CodeVersion, "", "")
	client.SetStackTracer(errors.StackTracer)
	return client
}

// ReportingHandler writes every record to the wrapped handler and also sends
// records at ERROR level or above to a Reporter. String values are redacted
// before they leave the process.
type ReportingHandler struct {
	next     slog.Handler
	reporter Reporter
	attrs    []slog.Attr
	group    string
}

// NewReportingHandler wraps next.
func NewReportingHandler(next slog.Handler, reporter Reporter) *ReportingHandler {
	return &ReportingHandler{next: next, reporter: reporter}
}

// Enabled implements slog.Handler.
func (h *ReportingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ReportingHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.next.Handle(ctx, record)
	if record.Level < slog.LevelError {
		return err
	}

	extras := make(map[string]interface{}, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		addExtra(extras, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		addExtra(extras, h.group, a)
		return true
	})
	h.reporter.MessageWithExtras(rollbar.ERR, redact.String(record.Message), extras)
	return err
}

// WithAttrs implements slog.Handler.
func (h *ReportingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		merged = append(merged, a)
	}
	return &ReportingHandler{next: h.next.WithAttrs(attrs), reporter: h.reporter, attrs: merged, group: h.group}
}

// WithGroup implements slog.Handler.
func (h *ReportingHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &ReportingHandler{next: h.next.WithGroup(name), reporter: h.reporter, attrs: h.attrs, group: group}
}

func addExtra(extras map[string]interface{}, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		for _, ga := range v.Group() {
			addExtra(extras, key, ga)
		}
	case slog.KindString:
		extras[key] = redact.String(v.String())
	default:
		if e, ok := v.Any().(error); ok {
			extras[key] = redact.Error(e)
			return
		}
		extras[key] = v.Any()
	}
}
