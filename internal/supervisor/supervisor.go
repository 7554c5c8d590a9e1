package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"scribe/internal/config"
	"scribe/internal/dispatch"
	"scribe/internal/logbuf"
	"scribe/internal/logging"
	"scribe/internal/models"
	"scribe/internal/protocol"
	"scribe/internal/state"
	"scribe/internal/transcript"
	"scribe/internal/worker"
)

// ErrUnknownModel is returned when load-model names a model outside the
// catalog.
var ErrUnknownModel = errors.New("unknown model")

// Recorder persists completed transcriptions. The history store implements
// it; a nil recorder disables persistence.
type Recorder interface {
	Record(ctx context.Context, entry RecordEntry) error
}

// RecordEntry is one completed transcription headed for the history store.
type RecordEntry struct {
	SessionID      string
	Model          string
	AudioPath      string
	Language       string
	AudioDuration  float64
	ProcessingTime float64
	Transcript     string
	Payload        string
	CompletedAt    time.Time
}

// Option configures optional supervisor collaborators.
type Option func(*Supervisor)

// WithLauncher injects a custom worker launcher (primarily for tests).
func WithLauncher(launcher worker.Launcher) Option {
	return func(s *Supervisor) { s.launcher = launcher }
}

// WithRecorder wires a history recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Supervisor) { s.recorder = recorder }
}

// WithEscalation overrides the shutdown ladder timeouts (tests use this to
// avoid real waits).
func WithEscalation(esc worker.Escalation) Option {
	return func(s *Supervisor) { s.escalation = esc }
}

// Supervisor owns the single worker session and all UI-visible state.
type Supervisor struct {
	cfg        *config.Config
	logger     *slog.Logger
	launcher   worker.Launcher
	recorder   Recorder
	escalation worker.Escalation
	dispatcher *dispatch.Dispatcher
	sampler    *logging.ProgressSampler

	mu           sync.RWMutex
	session      *worker.Session
	starting     bool // start in flight; the new session reads as not started until launch completes
	phase        state.Phase
	status       string
	progress     int
	loadedModel  string
	pendingAudio string
	result       *transcript.Result
	logs         *logbuf.Buffer
	lastExitCode *int
	generation   uint64
}

// New constructs a supervisor from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "supervisor"),
		launcher:   worker.NewExecLauncher(),
		escalation: escalationFromConfig(cfg),
		sampler:    logging.NewProgressSampler(10),
		phase:      state.Initial,
		status:     "Service not running",
		logs:       logbuf.New(logbuf.DefaultCapacity),
	}
	s.dispatcher = dispatch.New(
		cfg.Dispatch.QueueCapacity,
		time.Duration(cfg.Dispatch.TickIntervalMillis)*time.Millisecond,
		s.redraw,
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func escalationFromConfig(cfg *config.Config) worker.Escalation {
	esc := worker.DefaultEscalation()
	esc.GracefulWait = time.Duration(cfg.Shutdown.GracefulWaitMillis) * time.Millisecond
	esc.TerminateWait = time.Duration(cfg.Shutdown.TerminateWaitMillis) * time.Millisecond
	esc.KillWait = time.Duration(cfg.Shutdown.KillWaitMillis) * time.Millisecond
	esc.PollInterval = time.Duration(cfg.Shutdown.PollIntervalMillis) * time.Millisecond
	return esc
}

// Run drains the dispatcher until ctx is canceled. It must be running for
// worker events to take effect; the caller's goroutine becomes the single
// consumer.
func (s *Supervisor) Run(ctx context.Context) {
	s.dispatcher.Run(ctx)
}

// StartWorker spawns a new worker session. A second start while one is live
// is rejected with worker.ErrAlreadyRunning and changes nothing.
func (s *Supervisor) StartWorker() error {
	s.mu.Lock()
	if s.starting || (s.session != nil && !sessionDone(s.session)) {
		s.mu.Unlock()
		return worker.ErrAlreadyRunning
	}
	script := s.resolveScript()
	if script == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: set worker.script_path or place %s in a conventional location",
			worker.ErrScriptNotFound, worker.RunnerScriptName)
	}

	session := worker.NewSession(s.launcher, s.logger, worker.Callbacks{
		Event: func(event protocol.Event) {
			s.dispatcher.Enqueue(func() { s.consumeEvent(event) })
		},
		Exit: func(code int) {
			s.dispatcher.Enqueue(func() { s.processEnded(code) })
		},
	})
	s.session = session
	s.starting = true
	s.mu.Unlock()

	err := session.Start(worker.LaunchSpec{
		PythonBinary: s.cfg.Worker.PythonBinary,
		ScriptPath:   script,
		Env:          s.cfg.Worker.Env,
	})
	s.mu.Lock()
	s.starting = false
	if err != nil && s.session == session {
		s.session = nil
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.dispatcher.SetRunning(true)
	s.dispatcher.Enqueue(func() {
		s.onCommandIssued(state.EventStartSucceeded, "Starting service...", "")
	})
	s.logger.Info("worker session started", logging.String(logging.FieldSessionID, session.ID()))
	return nil
}

func (s *Supervisor) resolveScript() string {
	if s.cfg.Worker.ScriptPath != "" {
		return s.cfg.Worker.ScriptPath
	}
	return worker.FindRunnerScript(filepath.Dir(config.DefaultConfigPath()))
}

func sessionDone(session *worker.Session) bool {
	lifecycle := session.Lifecycle()
	return lifecycle == worker.Stopped || lifecycle == worker.NotStarted
}

// LoadModel validates the model name against the catalog and issues the
// load-model command.
func (s *Supervisor) LoadModel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.cfg.Worker.DefaultModel
	}
	if !models.Known(name) {
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownModel, name, strings.Join(models.Names(), ", "))
	}
	if err := s.send(worker.LoadModel{Model: name}); err != nil {
		return err
	}
	s.dispatcher.Enqueue(func() {
		s.onCommandIssued(state.EventLoadModelIssued, "Loading model...", "")
	})
	return nil
}

// Transcribe issues a transcribe-audio command for the given file. The path
// is made absolute before it reaches the worker.
func (s *Supervisor) Transcribe(audioPath string) error {
	abs, err := filepath.Abs(strings.TrimSpace(audioPath))
	if err != nil {
		return fmt.Errorf("resolve audio path: %w", err)
	}
	if err := s.send(worker.TranscribeAudio{Path: abs}); err != nil {
		return err
	}
	s.dispatcher.Enqueue(func() {
		s.onCommandIssued(state.EventTranscribeIssued, "Transcribing audio...", abs)
	})
	return nil
}

// send delivers a command to the live session. A broken pipe means the
// worker died underneath us: the status reflects it and post-mortem cleanup
// runs so the session reaches Stopped.
func (s *Supervisor) send(cmd worker.Command) error {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return worker.ErrNotRunning
	}
	err := session.Send(cmd)
	if errors.Is(err, worker.ErrBrokenPipe) {
		s.dispatcher.Enqueue(func() {
			s.mu.Lock()
			s.status = "Error: worker pipe closed"
			s.mu.Unlock()
		})
		go session.Stop(s.escalation)
	}
	return err
}

// StopWorker walks the session through the escalation ladder. Stopping when
// nothing runs is a no-op.
func (s *Supervisor) StopWorker() {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return
	}
	session.Stop(s.escalation)
}

// consumeEvent applies one decoded worker event. Runs on the consumer
// goroutine only.
func (s *Supervisor) consumeEvent(event protocol.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := event.(type) {
	case protocol.LogLine:
		s.logs.Append(ev.Text)
	case protocol.Progress:
		s.progress = ev.Percent
		if s.sampler.ShouldLog(ev.Percent) {
			s.logger.Debug("worker progress", logging.Int("percent", ev.Percent))
		}
	case protocol.StatusHint:
		s.status = ev.Message
	case protocol.WorkerReady:
		s.applyLocked(state.EventWorkerReady)
	case protocol.ModelLoaded:
		s.loadedModel = ev.Model
		s.applyLocked(state.EventModelLoaded)
		s.logger.Info("model loaded", logging.String(logging.FieldModel, ev.Model))
	case protocol.JSONBlock:
		s.consumeJSONLocked(ev.Text)
	}
}

func (s *Supervisor) consumeJSONLocked(raw string) {
	result, err := transcript.Decode(raw)
	if err != nil {
		// Advisory: the session stays in Processing and remains usable.
		s.status = "Error: failed to parse transcription output"
		s.logger.Warn("transcription payload unparsable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "transcript_parse_failed"),
			logging.String(logging.FieldErrorHint, "the worker may have printed a truncated payload"))
		return
	}

	s.result = result
	s.applyLocked(state.EventResultReceived)
	s.status = "Transcription complete"
	s.logger.Info("transcription complete",
		logging.String("language", result.Language),
		logging.String(logging.FieldModel, result.ModelUsed),
		logging.Float64("audio_duration", result.AudioDuration),
		logging.Float64("processing_time", result.ProcessingTime))

	if s.recorder == nil {
		return
	}
	entry := RecordEntry{
		Model:          result.ModelUsed,
		AudioPath:      s.pendingAudio,
		Language:       result.Language,
		AudioDuration:  result.AudioDuration,
		ProcessingTime: result.ProcessingTime,
		Transcript:     result.PlainText(),
		Payload:        raw,
		CompletedAt:    time.Now().UTC(),
	}
	if s.session != nil {
		entry.SessionID = s.session.ID()
	}
	if err := s.recorder.Record(context.Background(), entry); err != nil {
		s.logger.Warn("history record failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_record_failed"),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"))
	}
}

// processEnded handles the worker process exit, user-initiated or not. Runs
// on the consumer goroutine only.
func (s *Supervisor) processEnded(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyLocked(state.EventSessionEnded)
	s.lastExitCode = &code
	s.loadedModel = ""
	s.pendingAudio = ""
	s.progress = 0
	if code != 0 {
		s.status = fmt.Sprintf("Service exited with code %d", code)
	} else {
		s.status = "Service stopped"
	}
	s.session = nil
	s.dispatcher.SetRunning(false)
	s.logger.Info("worker session ended", logging.Int(logging.FieldExitCode, code))
}

// onCommandIssued records the state transition and status for a freshly
// issued command. Runs on the consumer goroutine.
func (s *Supervisor) onCommandIssued(event state.Event, status, audio string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(event)
	s.status = status
	s.progress = 0
	if audio != "" {
		s.pendingAudio = audio
	}
	s.sampler.Reset()
}

func (s *Supervisor) applyLocked(event state.Event) {
	next, ok := state.Next(s.phase, event)
	if !ok {
		s.logger.Debug("state event ignored",
			logging.String("event", event.String()),
			logging.String("phase", s.phase.String()))
		return
	}
	s.logger.Debug("state transition",
		logging.String("event", event.String()),
		logging.String("from", s.phase.String()),
		logging.String("to", next.String()))
	s.phase = next
}

// redraw bumps the generation counter so polling observers can detect
// freshness. Runs on the consumer goroutine.
func (s *Supervisor) redraw() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}
