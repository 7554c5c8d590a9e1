package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
	Socket   string `toml:"socket"`
}

// Worker contains configuration for the transcription worker process.
type Worker struct {
	PythonBinary string            `toml:"python_binary"`
	ScriptPath   string            `toml:"script_path"`
	DefaultModel string            `toml:"default_model"`
	Env          map[string]string `toml:"env"`
}

// Shutdown contains the escalation ladder timeouts, in milliseconds.
type Shutdown struct {
	GracefulWaitMillis  int `toml:"graceful_wait_millis"`
	TerminateWaitMillis int `toml:"terminate_wait_millis"`
	KillWaitMillis      int `toml:"kill_wait_millis"`
	PollIntervalMillis  int `toml:"poll_interval_millis"`
}

// Dispatch contains update dispatcher tuning.
type Dispatch struct {
	TickIntervalMillis int `toml:"tick_interval_millis"`
	QueueCapacity      int `toml:"queue_capacity"`
}

// History contains configuration for the transcription history store.
type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Worker   Worker   `toml:"worker"`
	Shutdown Shutdown `toml:"shutdown"`
	Dispatch Dispatch `toml:"dispatch"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	return filepath.Join(configHome(), "scribe", "config.toml")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

// Load reads the configuration from path, or the default location when path is
// empty. A missing file yields defaults. The returned path is the file that
// was read (or would have been), and created reports whether it existed.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultConfigPath()
	}
	resolved = ExpandPath(resolved)

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply when no config file exists.
	default:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, err == nil, err
	}
	return &cfg, resolved, err == nil, nil
}

// WriteSample writes the embedded sample config to path, failing if the file
// already exists.
func WriteSample(path string) error {
	path = ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath expands a leading ~ to the user home directory.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// SocketPath returns the daemon control socket path.
func (c *Config) SocketPath() string {
	if c.Paths.Socket != "" {
		return c.Paths.Socket
	}
	return filepath.Join(c.Paths.StateDir, "scribed.sock")
}

// LockPath returns the daemon single-instance lock path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "scribed.lock")
}

// HistoryPath returns the history database path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.Paths.LogDir = ExpandPath(c.Paths.LogDir)
	c.Paths.StateDir = ExpandPath(c.Paths.StateDir)
	c.Paths.Socket = ExpandPath(c.Paths.Socket)
	c.Worker.ScriptPath = ExpandPath(c.Worker.ScriptPath)
	c.History.Path = ExpandPath(c.History.Path)

	if c.Worker.PythonBinary == "" {
		c.Worker.PythonBinary = defaultPythonBinary
	}
	if c.Worker.DefaultModel == "" {
		c.Worker.DefaultModel = defaultModel
	}
	if c.Shutdown.GracefulWaitMillis <= 0 {
		c.Shutdown.GracefulWaitMillis = defaultGracefulWaitMillis
	}
	if c.Shutdown.TerminateWaitMillis <= 0 {
		c.Shutdown.TerminateWaitMillis = defaultTerminateWaitMillis
	}
	if c.Shutdown.KillWaitMillis <= 0 {
		c.Shutdown.KillWaitMillis = defaultKillWaitMillis
	}
	if c.Shutdown.PollIntervalMillis <= 0 {
		c.Shutdown.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Dispatch.TickIntervalMillis <= 0 {
		c.Dispatch.TickIntervalMillis = defaultTickIntervalMillis
	}
	if c.Dispatch.QueueCapacity <= 0 {
		c.Dispatch.QueueCapacity = defaultQueueCapacity
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = defaultHistoryMaxEntries
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
