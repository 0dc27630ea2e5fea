// Package logging assembles structured slog loggers and formatting helpers used
// across scrubarr.
//
// It owns the console and JSON handlers, the extra trace level used for HTTP
// wire logging, and context-aware helpers so triage code automatically tags
// log lines with the backend instance and cycle identifier. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
