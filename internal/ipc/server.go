package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"scribe/internal/daemon"
	"scribe/internal/history"
	"scribe/internal/logging"
	"scribe/internal/transcript"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Scribe", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually before restarting"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.Phase = status.Worker.Phase.String()
	resp.Lifecycle = status.Worker.Lifecycle.String()
	resp.SessionID = status.Worker.SessionID
	resp.StatusText = status.Worker.StatusText
	resp.Progress = status.Worker.Progress
	resp.LoadedModel = status.Worker.LoadedModel
	resp.Log = append(resp.Log, status.Worker.Log...)
	resp.SocketPath = status.SocketPath
	resp.LockPath = status.LockPath
	resp.HistoryDBPath = status.HistoryDBPath
	resp.HistoryCount = status.HistoryCount
	if status.Worker.ExitCode != nil {
		code := *status.Worker.ExitCode
		resp.ExitCode = &code
	}
	return nil
}

func (s *service) StartWorker(_ StartWorkerRequest, resp *StartWorkerResponse) error {
	s.log().Debug("worker start requested")
	if err := s.daemon.StartWorker(); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "worker started"
	s.log().Info("worker started via IPC",
		logging.String(logging.FieldEventType, "worker_start"))
	return nil
}

func (s *service) StopWorker(_ StopWorkerRequest, resp *StopWorkerResponse) error {
	s.log().Debug("worker stop requested")
	s.daemon.StopWorker()
	resp.Stopped = true
	s.log().Info("worker stopped via IPC",
		logging.String(logging.FieldEventType, "worker_stop"))
	return nil
}

func (s *service) LoadModel(req LoadModelRequest, resp *LoadModelResponse) error {
	name := strings.TrimSpace(req.Model)
	s.log().Debug("model load requested", logging.String(logging.FieldModel, name))
	if err := s.daemon.LoadModel(name); err != nil {
		resp.Accepted = false
		resp.Message = err.Error()
		return nil
	}
	resp.Accepted = true
	resp.Model = name
	return nil
}

func (s *service) Transcribe(req TranscribeRequest, resp *TranscribeResponse) error {
	path := strings.TrimSpace(req.AudioPath)
	if path == "" {
		return errors.New("transcribe requires an audio path")
	}
	s.log().Debug("transcription requested", logging.String(logging.FieldAudioPath, path))
	if err := s.daemon.Transcribe(path); err != nil {
		resp.Accepted = false
		resp.Message = err.Error()
		return nil
	}
	resp.Accepted = true
	return nil
}

func (s *service) Result(_ ResultRequest, resp *ResultResponse) error {
	status := s.daemon.WorkerStatus()
	if status.Result == nil {
		resp.Available = false
		return nil
	}
	fillResult(resp, status.Result)
	return nil
}

func fillResult(resp *ResultResponse, result *transcript.Result) {
	resp.Available = true
	resp.Transcript = result.PlainText()
	resp.Language = result.Language
	resp.ModelUsed = result.ModelUsed
	resp.AudioDuration = result.AudioDuration
	resp.ProcessingTime = result.ProcessingTime
	resp.Segments = make([]Segment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		resp.Segments = append(resp.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
}

func (s *service) Models(_ ModelsRequest, resp *ModelsResponse) error {
	loaded := s.daemon.WorkerStatus().LoadedModel
	catalog := s.daemon.Models()
	resp.Models = make([]ModelInfo, 0, len(catalog))
	for _, m := range catalog {
		resp.Models = append(resp.Models, ModelInfo{
			Name:   m.Name,
			Size:   m.Size,
			Loaded: m.Name == loaded,
		})
	}
	return nil
}

func convertHistoryEntry(entry history.Entry) HistoryEntry {
	return HistoryEntry{
		ID:             entry.ID,
		SessionID:      entry.SessionID,
		Model:          entry.Model,
		AudioPath:      entry.AudioPath,
		Language:       entry.Language,
		AudioDuration:  entry.AudioDuration,
		ProcessingTime: entry.ProcessingTime,
		Transcript:     entry.Transcript,
		Payload:        entry.Payload,
		CompletedAt:    entry.CompletedAt.Format(time.RFC3339),
	}
}

func (s *service) HistoryList(req HistoryListRequest, resp *HistoryListResponse) error {
	entries, err := s.daemon.HistoryList(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, convertHistoryEntry(entry))
	}
	return nil
}

func (s *service) HistoryShow(req HistoryShowRequest, resp *HistoryShowResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("history show requires an id")
	}
	entry, err := s.daemon.HistoryGet(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("transcription %s not found", req.ID)
	}
	converted := convertHistoryEntry(*entry)
	resp.Entry = &converted
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	s.log().Debug("history clear requested")
	removed, err := s.daemon.HistoryClear(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("history cleared",
		logging.String(logging.FieldEventType, "history_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait)
		defer cancel()
	}
	events, next, err := s.daemon.LogEvents(ctx, req.Since, req.Limit, req.Follow)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	resp.Next = next
	resp.Events = make([]LogEvent, 0, len(events))
	for _, evt := range events {
		resp.Events = append(resp.Events, LogEvent{
			Sequence:  evt.Sequence,
			Timestamp: evt.Timestamp.Format(time.RFC3339Nano),
			Level:     evt.Level,
			Message:   evt.Message,
			Component: evt.Component,
			SessionID: evt.SessionID,
			Fields:    evt.Fields,
		})
	}
	return nil
}
