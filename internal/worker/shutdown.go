package worker

import (
	"io"
	"log/slog"
	"time"

	"scribe/internal/logging"
)

// Escalation walks the three-tier shutdown ladder: graceful exit command,
// terminate signal, force kill. Each tier waits a bounded time, polling
// liveness at PollInterval, and is skipped when the process already exited.
// Signal failures are logged and swallowed; the ladder always completes.
type Escalation struct {
	GracefulWait  time.Duration
	TerminateWait time.Duration
	KillWait      time.Duration
	PollInterval  time.Duration

	// Sleep is injectable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultEscalation returns the ladder with its conventional timeouts.
func DefaultEscalation() Escalation {
	return Escalation{
		GracefulWait:  3 * time.Second,
		TerminateWait: 2 * time.Second,
		KillWait:      500 * time.Millisecond,
		PollInterval:  100 * time.Millisecond,
	}
}

// target is what the ladder needs from a process: command delivery, liveness,
// and signals. Session satisfies it; tests use fakes.
type target interface {
	sendExit() error
	closeStdin() error
	exited() bool
	terminate() error
	kill() error
}

// run executes the ladder against t. It returns true when the process is
// confirmed dead, false when it survived even the kill tier.
func (e Escalation) run(t target, logger *slog.Logger) bool {
	sleep := e.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	if t.exited() {
		return true
	}

	if err := t.sendExit(); err != nil {
		logger.Debug("graceful exit command failed", logging.Error(err))
	}
	if err := t.closeStdin(); err != nil {
		logger.Debug("stdin close failed", logging.Error(err))
	}
	if e.await(t, e.GracefulWait, sleep) {
		logger.Info("worker exited gracefully")
		return true
	}

	if err := t.terminate(); err != nil {
		logger.Debug("terminate signal failed", logging.Error(err))
	}
	if e.await(t, e.TerminateWait, sleep) {
		logger.Info("worker terminated")
		return true
	}

	if err := t.kill(); err != nil {
		logger.Debug("kill signal failed", logging.Error(err))
	}
	if e.await(t, e.KillWait, sleep) {
		logger.Info("worker force killed")
		return true
	}

	logger.Warn("worker survived force kill",
		logging.String(logging.FieldEventType, "worker_unkillable"),
		logging.String(logging.FieldErrorHint, "the process may need manual cleanup"))
	return false
}

// await polls liveness until the process exits or wait elapses.
func (e Escalation) await(t target, wait time.Duration, sleep func(time.Duration)) bool {
	poll := e.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	for elapsed := time.Duration(0); ; elapsed += poll {
		if t.exited() {
			return true
		}
		if elapsed >= wait {
			return false
		}
		sleep(poll)
	}
}

// Stop shuts the session down via the escalation ladder. It is idempotent:
// stopping an unstarted or already-stopped session is a no-op. The session
// always transitions to Stopped, even when the OS-level process could not be
// confirmed dead.
func (s *Session) Stop(esc Escalation) {
	s.mu.Lock()
	switch s.lifecycle {
	case NotStarted, Stopped:
		s.mu.Unlock()
		return
	case Stopping:
		s.mu.Unlock()
		return
	}
	s.lifecycle = Stopping
	handle := s.handle
	s.mu.Unlock()

	s.logger.Info("stopping worker")
	dead := esc.run(sessionTarget{s: s, handle: handle}, s.logger)

	code := 0
	if handle != nil {
		if c, exited := handle.Poll(); exited {
			code = c
		}
	}
	s.recordExit(code)
	if dead {
		// The output stream is at EOF; let the reader drain so no event
		// trails the stop.
		s.waitReader()
	}
}

// waitReader blocks until the reader loop has drained, so events never trail
// a completed stop.
func (s *Session) waitReader() {
	s.mu.Lock()
	done := s.readerDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// sessionTarget adapts a Session and its handle to the ladder.
type sessionTarget struct {
	s      *Session
	handle Handle
}

func (t sessionTarget) sendExit() error {
	t.s.mu.Lock()
	stdin := t.s.stdin
	t.s.mu.Unlock()
	if stdin == nil {
		return ErrBrokenPipe
	}
	_, err := io.WriteString(stdin, Shutdown{}.Line()+"\n")
	return err
}

func (t sessionTarget) closeStdin() error {
	t.s.mu.Lock()
	stdin := t.s.stdin
	t.s.stdin = nil
	t.s.mu.Unlock()
	if stdin == nil {
		return nil
	}
	return stdin.Close()
}

func (t sessionTarget) exited() bool {
	if t.handle == nil {
		return true
	}
	_, exited := t.handle.Poll()
	return exited
}

func (t sessionTarget) terminate() error {
	if t.handle == nil {
		return nil
	}
	return t.handle.Terminate()
}

func (t sessionTarget) kill() error {
	if t.handle == nil {
		return nil
	}
	return t.handle.Kill()
}
