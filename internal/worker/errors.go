package worker

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when a session is live.
	ErrAlreadyRunning = errors.New("worker session already running")
	// ErrScriptNotFound is returned by Start when the runner script is missing.
	ErrScriptNotFound = errors.New("worker runner script not found")
	// ErrBrokenPipe is returned by Send when the worker's stdin is closed or
	// the process has exited. Callers report it; commands are never retried.
	ErrBrokenPipe = errors.New("worker stdin closed")
	// ErrNotRunning is returned by Send before a session has started.
	ErrNotRunning = errors.New("worker session not running")
)
