// Package logging assembles the structured slog loggers used by samplerank.
//
// It owns the console and JSON handlers, routes records to the log file with
// warnings teed to stderr, and exposes context helpers so command code tags
// every line with the active session and round. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
