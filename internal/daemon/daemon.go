package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"scribe/internal/config"
	"scribe/internal/history"
	"scribe/internal/logging"
	"scribe/internal/models"
	"scribe/internal/supervisor"
)

// Daemon owns the long-lived services behind the IPC socket and enforces
// single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	sup    *supervisor.Supervisor
	store  *history.Store
	hub    *logging.StreamHub

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	Worker        supervisor.Status
	SocketPath    string
	LockPath      string
	HistoryDBPath string
	HistoryCount  int64
}

// New constructs a daemon with initialized dependencies. The history store
// may be nil when persistence is disabled.
func New(cfg *config.Config, logger *slog.Logger, sup *supervisor.Supervisor, store *history.Store, hub *logging.StreamHub) (*Daemon, error) {
	if cfg == nil || logger == nil || sup == nil {
		return nil, errors.New("daemon requires config, logger, and supervisor")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		sup:      sup,
		store:    store,
		hub:      hub,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the supervisor event loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sup.Run(runCtx)
	}()

	d.running.Store(true)
	d.logger.Info("scribe daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts the worker down, stops the event loop, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.sup.StopWorker()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("scribe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// StartWorker launches a new worker session.
func (d *Daemon) StartWorker() error {
	return d.sup.StartWorker()
}

// StopWorker shuts the worker session down with the escalation ladder.
func (d *Daemon) StopWorker() {
	d.sup.StopWorker()
}

// LoadModel issues a model load. An empty name selects the configured
// default.
func (d *Daemon) LoadModel(name string) error {
	return d.sup.LoadModel(name)
}

// Transcribe issues a transcription request for the given audio file.
func (d *Daemon) Transcribe(audioPath string) error {
	return d.sup.Transcribe(audioPath)
}

// WorkerStatus returns a point-in-time copy of the supervisor state.
func (d *Daemon) WorkerStatus() supervisor.Status {
	return d.sup.Snapshot()
}

// Models lists the known model catalog.
func (d *Daemon) Models() []models.Model {
	return models.Catalog
}

// HistoryList returns recent transcriptions, newest first.
func (d *Daemon) HistoryList(ctx context.Context, limit int) ([]history.Entry, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.List(ctx, limit)
}

// HistoryGet returns one stored transcription with its full payload.
func (d *Daemon) HistoryGet(ctx context.Context, id string) (*history.Entry, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.Get(ctx, id)
}

// HistoryClear removes all stored transcriptions.
func (d *Daemon) HistoryClear(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("history store unavailable")
	}
	return d.store.Clear(ctx)
}

// LogEvents returns buffered log events after the given sequence.
func (d *Daemon) LogEvents(ctx context.Context, since uint64, limit int, wait bool) ([]logging.LogEvent, uint64, error) {
	if d.hub == nil {
		return nil, since, nil
	}
	return d.hub.Fetch(ctx, since, limit, wait)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:    d.running.Load(),
		PID:        os.Getpid(),
		Worker:     d.sup.Snapshot(),
		SocketPath: d.cfg.SocketPath(),
		LockPath:   d.lockPath,
	}
	if d.store != nil {
		status.HistoryDBPath = d.store.Path()
		if count, err := d.store.Count(ctx); err == nil {
			status.HistoryCount = count
		}
	}
	return status
}

type storeRecorder struct {
	store *history.Store
}

func (r *storeRecorder) Record(ctx context.Context, entry supervisor.RecordEntry) error {
	_, err := r.store.Add(ctx, history.Entry{
		SessionID:      entry.SessionID,
		Model:          entry.Model,
		AudioPath:      entry.AudioPath,
		Language:       entry.Language,
		AudioDuration:  entry.AudioDuration,
		ProcessingTime: entry.ProcessingTime,
		Transcript:     entry.Transcript,
		Payload:        entry.Payload,
		CompletedAt:    entry.CompletedAt,
	})
	return err
}

// NewRecorder adapts a history store into a supervisor recorder without
// needing a daemon. Used at startup before the daemon exists.
func NewRecorder(store *history.Store) supervisor.Recorder {
	if store == nil {
		return nil
	}
	return &storeRecorder{store: store}
}
