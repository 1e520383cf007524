// Package logging assembles structured slog loggers used across tubeinsight.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers so pipeline code can tag log lines with run IDs,
// channel and video identifiers, and stage names. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
