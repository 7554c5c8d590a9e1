package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Worker.ScriptPath = WriteRunnerScript(t, base)
	cfg.Shutdown.GracefulWaitMillis = 50
	cfg.Shutdown.TerminateWaitMillis = 50
	cfg.Shutdown.KillWaitMillis = 20
	cfg.Shutdown.PollIntervalMillis = 5
	cfg.Dispatch.TickIntervalMillis = 20
	cfg.History.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithDefaultModel overrides the configured default model.
func WithDefaultModel(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Worker.DefaultModel = name
	}
}

// WithHistory enables history persistence under the test state directory.
func WithHistory() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = true
	}
}

// WriteRunnerScript drops a placeholder worker script under dir and returns
// its path. Sessions stat the script before launching.
func WriteRunnerScript(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "whisperx_runner.py")
	if err := os.WriteFile(path, []byte("# placeholder\n"), 0o644); err != nil {
		t.Fatalf("write runner script: %v", err)
	}
	return path
}
