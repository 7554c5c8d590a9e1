// Package supervisor composes the worker session, protocol events, state
// machine, and dispatcher into the daemon's single coherent surface.
//
// The supervisor owns at most one live worker session. Session goroutines
// never mutate supervisor state directly: every observation is enqueued onto
// the dispatcher and applied on the consumer goroutine running Run. Command
// methods may be called from any goroutine (IPC handlers in practice); they
// write to the worker synchronously and enqueue the resulting state
// transition, so the consumer always observes commands and worker output in
// one ordered stream.
package supervisor
