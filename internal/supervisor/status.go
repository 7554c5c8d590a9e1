package supervisor

import (
	"scribe/internal/state"
	"scribe/internal/transcript"
	"scribe/internal/worker"
)

// Status is a point-in-time copy of the supervisor's UI-visible state. Safe
// to hand across goroutines; nothing in it aliases supervisor internals.
type Status struct {
	Phase       state.Phase
	Lifecycle   worker.Lifecycle
	SessionID   string
	StatusText  string
	Progress    int
	LoadedModel string
	Log         []string
	Result      *transcript.Result
	ExitCode    *int
	Generation  uint64
}

// Snapshot returns a consistent copy of the supervisor state. Callable from
// any goroutine.
func (s *Supervisor) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Phase:       s.phase,
		Lifecycle:   worker.NotStarted,
		StatusText:  s.status,
		Progress:    s.progress,
		LoadedModel: s.loadedModel,
		Log:         s.logs.Lines(),
		Generation:  s.generation,
	}
	if s.session != nil {
		status.Lifecycle = s.session.Lifecycle()
		status.SessionID = s.session.ID()
	}
	status.Result = s.result.Clone()
	if s.lastExitCode != nil {
		code := *s.lastExitCode
		status.ExitCode = &code
	}
	return status
}

// Phase returns just the workflow phase.
func (s *Supervisor) Phase() state.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Result returns the latest completed transcription, or nil.
func (s *Supervisor) Result() *transcript.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.Clone()
}
