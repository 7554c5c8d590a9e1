package config

const (
	defaultLogDir              = "~/.local/share/scribe/logs"
	defaultStateDir            = "~/.local/share/scribe"
	defaultPythonBinary        = "python3"
	defaultModel               = "tiny.en"
	defaultGracefulWaitMillis  = 3000
	defaultTerminateWaitMillis = 2000
	defaultKillWaitMillis      = 500
	defaultPollIntervalMillis  = 100
	defaultTickIntervalMillis  = 500
	defaultQueueCapacity       = 256
	defaultHistoryMaxEntries   = 500
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Worker: Worker{
			PythonBinary: defaultPythonBinary,
			DefaultModel: defaultModel,
		},
		Shutdown: Shutdown{
			GracefulWaitMillis:  defaultGracefulWaitMillis,
			TerminateWaitMillis: defaultTerminateWaitMillis,
			KillWaitMillis:      defaultKillWaitMillis,
			PollIntervalMillis:  defaultPollIntervalMillis,
		},
		Dispatch: Dispatch{
			TickIntervalMillis: defaultTickIntervalMillis,
			QueueCapacity:      defaultQueueCapacity,
		},
		History: History{
			Enabled:    true,
			MaxEntries: defaultHistoryMaxEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
