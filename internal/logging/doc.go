// Package logging assembles structured slog loggers and formatting helpers
// used across scribe components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so supervisor code tags log lines with
// session and correlation IDs consistently. The package also provides a no-op
// logger for tests and wiring code that cannot fail, and a bounded StreamHub
// that retains recent events for IPC log tailing.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
