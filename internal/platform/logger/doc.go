// Package logger configures structured JSON logging on log/slog, carries
// request-scoped loggers in a context.Context, and optionally forwards
// error-level records to Rollbar.
package logger
