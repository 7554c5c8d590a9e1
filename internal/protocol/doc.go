// Package protocol turns the worker's raw stdout lines into typed events.
//
// The worker emits free-text log lines, progress=<n> markers, and a JSON
// payload enclosed between two 60-character "=" delimiter lines. Status is
// inferred from key phrases in the log text; this is best-effort heuristic
// matching against free-form worker output, not a formal grammar, and the
// rules live in a single declarative table so the conventions stay auditable.
package protocol
