// Package logging assembles structured slog loggers and formatting helpers used
// across courtq.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so webhook handling can tag log
// lines with the inbound event's correlation id and chat scope. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
