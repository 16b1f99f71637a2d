// Package logging assembles structured slog loggers and formatting helpers used
// across slideset commands.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so extraction code can tag log lines with
// the run id and the deck being processed. Each tool writes a dated log file
// (extract_YYYY-MM-DD.log, annotate_YYYY-MM-DD.log) that CleanupOldLogs prunes
// once it falls outside the configured retention window.
//
// Tests and wiring code that cannot fail should use NewNop.
package logging
