package worker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe/internal/logging"
	"scribe/internal/protocol"
)

// Lifecycle is the session's process-ownership state.
type Lifecycle int

const (
	NotStarted Lifecycle = iota
	Starting
	Running
	Stopping
	Stopped
)

// String returns the lifecycle name used in status output.
func (l Lifecycle) String() string {
	switch l {
	case NotStarted:
		return "not-started"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// readErrorBackoff is the pause after a transient read failure before the
// reader loop tries again.
const readErrorBackoff = 100 * time.Millisecond

// Callbacks receive session observations. Both are invoked from the reader
// goroutine; implementations must hand the values off (e.g. to a dispatcher)
// rather than mutate shared state in place.
type Callbacks struct {
	// Event receives every decoded protocol event, in stream order.
	Event func(protocol.Event)
	// Exit fires exactly once when the worker process ends, with its exit
	// code.
	Exit func(code int)
}

// Session supervises one worker process lifetime. At most one session is live
// per supervisor; the supervisor is its exclusive owner.
type Session struct {
	id        string
	launcher  Launcher
	logger    *slog.Logger
	callbacks Callbacks

	mu        sync.Mutex
	lifecycle Lifecycle
	handle    Handle
	stdin     io.WriteCloser
	exitCode  *int

	readerDone chan struct{}
	exitOnce   sync.Once
}

// NewSession constructs an unstarted session.
func NewSession(launcher Launcher, logger *slog.Logger, callbacks Callbacks) *Session {
	if launcher == nil {
		launcher = NewExecLauncher()
	}
	id := uuid.NewString()
	return &Session{
		id:        id,
		launcher:  launcher,
		logger:    logging.NewComponentLogger(logger, "worker").With(logging.String(logging.FieldSessionID, id)),
		callbacks: callbacks,
	}
}

// ID returns the session's correlation ID.
func (s *Session) ID() string {
	return s.id
}

// Lifecycle returns the current lifecycle state.
func (s *Session) Lifecycle() Lifecycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle
}

// Start spawns the worker and begins the reader loop. It fails when the
// session already owns a live process or the runner script is missing.
func (s *Session) Start(spec LaunchSpec) error {
	s.mu.Lock()
	if s.lifecycle == Starting || s.lifecycle == Running || s.lifecycle == Stopping {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.lifecycle = Starting
	s.mu.Unlock()

	if _, err := os.Stat(spec.ScriptPath); err != nil {
		s.setLifecycle(NotStarted)
		return fmt.Errorf("%w: %s", ErrScriptNotFound, spec.ScriptPath)
	}
	if spec.WorkDir == "" {
		spec.WorkDir = filepath.Dir(spec.ScriptPath)
	}

	handle, err := s.launcher.Launch(spec)
	if err != nil {
		s.setLifecycle(NotStarted)
		return fmt.Errorf("spawn worker: %w", err)
	}

	s.mu.Lock()
	s.handle = handle
	s.stdin = handle.Stdin()
	s.lifecycle = Running
	s.readerDone = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("worker started",
		logging.String("script", spec.ScriptPath),
		logging.Int("pid", handle.PID()))

	go s.readLoop(handle)
	return nil
}

// Send writes one command line to the worker and flushes it immediately.
func (s *Session) Send(cmd Command) error {
	s.mu.Lock()
	stdin := s.stdin
	lifecycle := s.lifecycle
	handle := s.handle
	s.mu.Unlock()

	if lifecycle == NotStarted || lifecycle == Starting {
		return ErrNotRunning
	}
	if lifecycle == Stopped || lifecycle == Stopping || stdin == nil {
		return ErrBrokenPipe
	}
	if handle != nil {
		if _, exited := handle.Poll(); exited {
			return fmt.Errorf("%w: worker exited", ErrBrokenPipe)
		}
	}
	if _, err := io.WriteString(stdin, cmd.Line()+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokenPipe, err)
	}
	s.logger.Debug("command sent", logging.String("command", cmd.Line()))
	return nil
}

// Poll reports the worker's exit code when it has exited.
func (s *Session) Poll() (int, bool) {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()
	if handle == nil {
		return 0, false
	}
	return handle.Poll()
}

// ExitCode returns the recorded exit code after the session stopped.
func (s *Session) ExitCode() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exitCode == nil {
		return 0, false
	}
	return *s.exitCode, true
}

func (s *Session) setLifecycle(l Lifecycle) {
	s.mu.Lock()
	s.lifecycle = l
	s.mu.Unlock()
}

// readLoop pulls merged output lines, feeds the codec, and forwards events.
// Read failures degrade to a logged line and a brief backoff; the loop only
// terminates once the stream is exhausted and the process has exited.
func (s *Session) readLoop(handle Handle) {
	defer close(s.readerDone)

	codec := &protocol.Codec{}
	reader := bufio.NewReader(handle.Stdout())
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			s.forward(codec, trimLineEnding(line))
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			break
		}
		s.logger.Warn("worker output read failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "worker_read_failed"))
		s.forward(codec, fmt.Sprintf("Error reading output: %v", err))
		time.Sleep(readErrorBackoff)
	}

	code := s.awaitExit(handle)
	s.logger.Info("worker exited", logging.Int(logging.FieldExitCode, code))
	s.recordExit(code)
}

func (s *Session) forward(codec *protocol.Codec, line string) {
	if s.callbacks.Event == nil {
		return
	}
	for _, event := range codec.Feed(line) {
		s.callbacks.Event(event)
	}
}

// awaitExit polls for the exit code after the output stream closed; the
// process normally exits almost immediately afterwards.
func (s *Session) awaitExit(handle Handle) int {
	for {
		if code, exited := handle.Poll(); exited {
			return code
		}
		time.Sleep(readErrorBackoff)
	}
}

func (s *Session) recordExit(code int) {
	s.exitOnce.Do(func() {
		s.mu.Lock()
		s.exitCode = &code
		s.lifecycle = Stopped
		s.stdin = nil
		s.mu.Unlock()
		if s.callbacks.Exit != nil {
			s.callbacks.Exit(code)
		}
	})
}

func trimLineEnding(line string) string {
	for len(line) > 0 {
		last := line[len(line)-1]
		if last != '\n' && last != '\r' {
			break
		}
		line = line[:len(line)-1]
	}
	return line
}
