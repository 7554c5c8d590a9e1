package testsupport

import (
	"errors"
	"io"
	"strings"
	"sync"

	"scribe/internal/worker"
)

// FakeHandle simulates a live worker process. Output written with EmitLine
// flows through a real pipe so session read loops block the way they do
// against a child process.
type FakeHandle struct {
	mu         sync.Mutex
	stdin      strings.Builder
	stdinOpen  bool
	exitCode   int
	exited     bool
	termCalls  int
	killCalls  int
	outReader  *io.PipeReader
	outWriter  *io.PipeWriter
	exitSignal chan struct{}

	// ExitOnStdinClose simulates a worker that honors exit() by leaving
	// when its command stream closes.
	ExitOnStdinClose bool
	// ExitOnTerminate simulates a worker that honors SIGTERM.
	ExitOnTerminate bool
	// ExitOnKill simulates a worker that dies to SIGKILL. Leave all three
	// false to model an unkillable process.
	ExitOnKill bool
}

// NewFakeHandle returns a handle modeling a cooperative worker.
func NewFakeHandle() *FakeHandle {
	r, w := io.Pipe()
	return &FakeHandle{
		stdinOpen:        true,
		outReader:        r,
		outWriter:        w,
		exitSignal:       make(chan struct{}),
		ExitOnStdinClose: true,
		ExitOnTerminate:  true,
		ExitOnKill:       true,
	}
}

// EmitLine writes one output line to the fake process stdout.
func (h *FakeHandle) EmitLine(line string) {
	_, _ = h.outWriter.Write([]byte(line + "\n"))
}

// Exit marks the process as exited and closes its output stream.
func (h *FakeHandle) Exit(code int) {
	h.mu.Lock()
	if h.exited {
		h.mu.Unlock()
		return
	}
	h.exited = true
	h.exitCode = code
	close(h.exitSignal)
	h.mu.Unlock()
	_ = h.outWriter.Close()
}

// Exited returns a channel closed once the process exits.
func (h *FakeHandle) Exited() <-chan struct{} {
	return h.exitSignal
}

// StdinLines returns every command line written so far.
func (h *FakeHandle) StdinLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	raw := strings.TrimSuffix(h.stdin.String(), "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// TerminateCalls reports how many times Terminate ran.
func (h *FakeHandle) TerminateCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.termCalls
}

// KillCalls reports how many times Kill ran.
func (h *FakeHandle) KillCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.killCalls
}

func (h *FakeHandle) Stdin() io.WriteCloser { return fakeStdin{h} }

func (h *FakeHandle) Stdout() io.Reader { return h.outReader }

func (h *FakeHandle) Poll() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.exited
}

func (h *FakeHandle) Terminate() error {
	h.mu.Lock()
	h.termCalls++
	exitNow := h.ExitOnTerminate && !h.exited
	h.mu.Unlock()
	if exitNow {
		h.Exit(143)
	}
	return nil
}

func (h *FakeHandle) Kill() error {
	h.mu.Lock()
	h.killCalls++
	exitNow := h.ExitOnKill && !h.exited
	h.mu.Unlock()
	if exitNow {
		h.Exit(137)
	}
	return nil
}

func (h *FakeHandle) PID() int { return 4242 }

type fakeStdin struct {
	handle *FakeHandle
}

func (s fakeStdin) Write(p []byte) (int, error) {
	s.handle.mu.Lock()
	if !s.handle.stdinOpen || s.handle.exited {
		s.handle.mu.Unlock()
		return 0, errors.New("write to closed stdin")
	}
	s.handle.stdin.Write(p)
	s.handle.mu.Unlock()
	return len(p), nil
}

func (s fakeStdin) Close() error {
	s.handle.mu.Lock()
	wasOpen := s.handle.stdinOpen
	s.handle.stdinOpen = false
	exitNow := wasOpen && s.handle.ExitOnStdinClose && !s.handle.exited
	s.handle.mu.Unlock()
	if exitNow {
		s.handle.Exit(0)
	}
	return nil
}

// FakeLauncher hands out prepared fake handles and records launch specs.
type FakeLauncher struct {
	mu       sync.Mutex
	handles  []*FakeHandle
	launched []*FakeHandle
	specs    []worker.LaunchSpec

	// Err, when set, fails the next Launch.
	Err error
}

// NewFakeLauncher returns a launcher producing cooperative fake handles.
func NewFakeLauncher() *FakeLauncher {
	return &FakeLauncher{}
}

// Prepare queues a specific handle for the next Launch call.
func (l *FakeLauncher) Prepare(handle *FakeHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handles = append(l.handles, handle)
}

// Specs returns every recorded launch spec.
func (l *FakeLauncher) Specs() []worker.LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]worker.LaunchSpec, len(l.specs))
	copy(out, l.specs)
	return out
}

// Launched returns the handle backing the nth launch, or nil.
func (l *FakeLauncher) Launched(n int) *FakeHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 0 || n >= len(l.launched) {
		return nil
	}
	return l.launched[n]
}

func (l *FakeLauncher) Launch(spec worker.LaunchSpec) (worker.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	l.specs = append(l.specs, spec)
	handle := NewFakeHandle()
	if len(l.handles) > 0 {
		handle = l.handles[0]
		l.handles = l.handles[1:]
	}
	l.launched = append(l.launched, handle)
	return handle, nil
}
