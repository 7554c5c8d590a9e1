package worker

import (
	"os"
	"path/filepath"
)

// RunnerScriptName is the conventional WhisperX runner filename.
const RunnerScriptName = "whisperx_runner.py"

// FindRunnerScript probes the conventional locations for the runner script
// when the configuration does not pin a path. The extra dirs (typically the
// config directory) are checked first. Returns the first existing path, or ""
// when none is found.
func FindRunnerScript(extraDirs ...string) string {
	dirs := append([]string{}, extraDirs...)
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			home,
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Projects"),
		)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, RunnerScriptName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
