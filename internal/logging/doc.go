// Package logging assembles structured slog loggers and formatting helpers used
// across lyricsync services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so provider and session code can
// tag log lines with request IDs, track IDs, and provider names. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
