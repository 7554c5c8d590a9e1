package worker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// LaunchSpec describes how to spawn the worker process.
type LaunchSpec struct {
	PythonBinary string
	ScriptPath   string
	WorkDir      string
	Env          map[string]string
}

// Handle is a live worker process. Implementations must be safe for
// concurrent use by the session goroutines.
type Handle interface {
	// Stdin is the worker's command stream.
	Stdin() io.WriteCloser
	// Stdout is the worker's merged stdout+stderr stream.
	Stdout() io.Reader
	// Poll reports the exit code and whether the process has exited.
	Poll() (int, bool)
	// Terminate delivers a termination signal to the worker's process group.
	Terminate() error
	// Kill force-kills the worker's process group.
	Kill() error
	// PID returns the OS process ID.
	PID() int
}

// Launcher spawns worker processes. Injected so tests can substitute a fake.
type Launcher interface {
	Launch(spec LaunchSpec) (Handle, error)
}

// NewExecLauncher returns the production launcher backed by os/exec.
func NewExecLauncher() Launcher {
	return execLauncher{}
}

type execLauncher struct{}

func (execLauncher) Launch(spec LaunchSpec) (Handle, error) {
	cmd := exec.Command(spec.PythonBinary, "-u", spec.ScriptPath) //nolint:gosec
	cmd.Dir = spec.WorkDir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(spec.ScriptPath)
	}
	cmd.Env = buildEnv(spec.Env)
	// Own process group so the escalation ladder can signal the worker and
	// any children it spawns in one shot.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	outRead, outWrite, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stdout = outWrite
	cmd.Stderr = outWrite

	if err := cmd.Start(); err != nil {
		stdin.Close()
		outRead.Close()
		outWrite.Close()
		return nil, fmt.Errorf("start worker: %w", err)
	}
	// The child holds its own copy of the write end.
	outWrite.Close()

	h := &execHandle{
		cmd:    cmd,
		stdin:  stdin,
		stdout: outRead,
		done:   make(chan struct{}),
	}
	go h.wait()
	return h, nil
}

// buildEnv merges extra variables over the parent environment and forces
// UTF-8, unbuffered worker I/O.
func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	env = append(env, "PYTHONIOENCODING=utf-8:replace", "PYTHONUNBUFFERED=1")
	if len(extra) == 0 {
		return env
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

type execHandle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader

	done chan struct{}

	mu       sync.Mutex
	exited   bool
	exitCode int
}

func (h *execHandle) wait() {
	err := h.cmd.Wait()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	h.mu.Lock()
	h.exited = true
	h.exitCode = code
	h.mu.Unlock()
	close(h.done)
}

func (h *execHandle) Stdin() io.WriteCloser { return h.stdin }

func (h *execHandle) Stdout() io.Reader { return h.stdout }

func (h *execHandle) Poll() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.exited
}

func (h *execHandle) Terminate() error {
	return h.signal(unix.SIGTERM)
}

func (h *execHandle) Kill() error {
	return h.signal(unix.SIGKILL)
}

func (h *execHandle) signal(sig unix.Signal) error {
	if _, exited := h.Poll(); exited {
		return nil
	}
	pid := h.PID()
	if pid <= 0 {
		return nil
	}
	// Negative pid addresses the whole process group.
	return unix.Kill(-pid, sig)
}

func (h *execHandle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}
