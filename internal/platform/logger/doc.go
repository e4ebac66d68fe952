// Package logger configures the process-wide slog JSON logger and carries a
// request-scoped logger, tagged with the trace ID, through context.Context.
// NewCapture returns a logger whose records tests can inspect.
package logger
