package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scribe/internal/daemon"
	"scribe/internal/history"
	"scribe/internal/ipc"
	"scribe/internal/logging"
	"scribe/internal/supervisor"
	"scribe/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store, err := history.Open(ctx, cfg.HistoryPath(), cfg.History.MaxEntries)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}

	launcher := testsupport.NewFakeLauncher()
	logger := logging.NewNop()
	sup := supervisor.New(cfg, logger,
		supervisor.WithLauncher(launcher),
		supervisor.WithRecorder(daemon.NewRecorder(store)))

	d, err := daemon.New(cfg, logger, sup, store, logging.NewStreamHub(128))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socket := filepath.Join(cfg.Paths.StateDir, "scribed.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.Phase != "initial" {
		t.Fatalf("expected initial phase, got %q", status.Phase)
	}

	modelsResp, err := client.Models()
	if err != nil {
		t.Fatalf("Models RPC failed: %v", err)
	}
	if len(modelsResp.Models) == 0 {
		t.Fatal("expected a model catalog")
	}
	sawTiny := false
	for _, m := range modelsResp.Models {
		if m.Name == "tiny.en" {
			sawTiny = true
		}
	}
	if !sawTiny {
		t.Fatal("expected tiny.en in the catalog")
	}

	startResp, err := client.StartWorker()
	if err != nil {
		t.Fatalf("StartWorker RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	secondStart, err := client.StartWorker()
	if err != nil {
		t.Fatalf("second StartWorker RPC failed: %v", err)
	}
	if secondStart.Started {
		t.Fatal("second start must be rejected")
	}

	loadResp, err := client.LoadModel("no-such-model")
	if err != nil {
		t.Fatalf("LoadModel RPC failed: %v", err)
	}
	if loadResp.Accepted {
		t.Fatal("unknown model must be rejected")
	}

	handle := launcher.Launched(0)
	handle.EmitLine("Environment setup complete")
	waitForStatus(t, client, func(resp *ipc.StatusResponse) bool {
		return resp.Phase == "running"
	})

	resultResp, err := client.Result()
	if err != nil {
		t.Fatalf("Result RPC failed: %v", err)
	}
	if resultResp.Available {
		t.Fatal("no result expected before a transcription")
	}

	audio := filepath.Join(cfg.Paths.StateDir, "clip.wav")
	if _, err := client.LoadModel("tiny.en"); err != nil {
		t.Fatalf("LoadModel RPC failed: %v", err)
	}
	handle.EmitLine("Model 'tiny.en' loaded successfully")
	waitForStatus(t, client, func(resp *ipc.StatusResponse) bool {
		return resp.Phase == "model-ready"
	})

	transcribeResp, err := client.Transcribe(audio)
	if err != nil {
		t.Fatalf("Transcribe RPC failed: %v", err)
	}
	if !transcribeResp.Accepted {
		t.Fatalf("expected transcribe accepted, message=%s", transcribeResp.Message)
	}

	handle.EmitLine(strings.Repeat("=", 60))
	handle.EmitLine(`{"transcript": "From the socket.", "language": "en", "model_used": "tiny.en", "audio_duration": 1.0, "processing_time": 0.4, "segments": []}`)
	handle.EmitLine(strings.Repeat("=", 60))

	waitForStatus(t, client, func(resp *ipc.StatusResponse) bool {
		return resp.Phase == "transcribed"
	})

	resultResp, err = client.Result()
	if err != nil {
		t.Fatalf("Result RPC failed: %v", err)
	}
	if !resultResp.Available || resultResp.Transcript != "From the socket." {
		t.Fatalf("unexpected result: %#v", resultResp)
	}

	listResp, err := client.HistoryList(10)
	if err != nil {
		t.Fatalf("HistoryList RPC failed: %v", err)
	}
	if len(listResp.Entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(listResp.Entries))
	}

	showResp, err := client.HistoryShow(listResp.Entries[0].ID)
	if err != nil {
		t.Fatalf("HistoryShow RPC failed: %v", err)
	}
	if showResp.Entry == nil || showResp.Entry.Payload == "" {
		t.Fatalf("expected full entry with payload, got %#v", showResp.Entry)
	}

	if _, err := client.HistoryShow("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown history id")
	}

	stopResp, err := client.StopWorker()
	if err != nil {
		t.Fatalf("StopWorker RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}
	waitForStatus(t, client, func(resp *ipc.StatusResponse) bool {
		return resp.Phase == "initial"
	})

	clearResp, err := client.HistoryClear()
	if err != nil {
		t.Fatalf("HistoryClear RPC failed: %v", err)
	}
	if clearResp.Removed != 1 {
		t.Fatalf("expected 1 entry removed, got %d", clearResp.Removed)
	}
}

func waitForStatus(t *testing.T, client *ipc.Client, cond func(*ipc.StatusResponse) bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		resp, err := client.Status()
		if err != nil {
			t.Fatalf("Status RPC failed: %v", err)
		}
		if cond(resp) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status, last phase %q", resp.Phase)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestLogTailOverIPC(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := logging.NewStreamHub(128)
	logger := logging.NewNop()
	sup := supervisor.New(cfg, logger, supervisor.WithLauncher(testsupport.NewFakeLauncher()))
	d, err := daemon.New(cfg, logger, sup, nil, hub)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socket := filepath.Join(cfg.Paths.StateDir, "scribed.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() { srv.Close() })
	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	hub.Publish(logging.LogEvent{Level: "INFO", Message: "first"})
	hub.Publish(logging.LogEvent{Level: "WARN", Message: "second", Component: "worker"})

	resp, err := client.LogTail(ipc.LogTailRequest{Limit: 10})
	if err != nil {
		t.Fatalf("LogTail RPC failed: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].Message != "first" || resp.Events[1].Component != "worker" {
		t.Fatalf("unexpected events: %#v", resp.Events)
	}

	followDone := make(chan struct{})
	go func() {
		defer close(followDone)
		followResp, err := client.LogTail(ipc.LogTailRequest{Since: resp.Next, Follow: true, WaitMillis: 2000})
		if err != nil {
			t.Errorf("LogTail follow error: %v", err)
			return
		}
		if len(followResp.Events) != 1 || followResp.Events[0].Message != "third" {
			t.Errorf("unexpected follow events: %#v", followResp.Events)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	hub.Publish(logging.LogEvent{Level: "INFO", Message: "third"})

	select {
	case <-followDone:
	case <-time.After(10 * time.Second):
		t.Fatal("log tail follow timed out")
	}
}
