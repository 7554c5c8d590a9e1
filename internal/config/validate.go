package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.StateDir) == "" {
		problems = append(problems, "paths.state_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if strings.TrimSpace(c.Worker.PythonBinary) == "" {
		problems = append(problems, "worker.python_binary must not be empty")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	if c.Shutdown.PollIntervalMillis > c.Shutdown.KillWaitMillis {
		problems = append(problems, "shutdown.poll_interval_millis must not exceed shutdown.kill_wait_millis")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
