package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/daemon"
	"scribe/internal/history"
	"scribe/internal/ipc"
	"scribe/internal/logging"
	"scribe/internal/supervisor"
	"scribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	launcher   *testsupport.FakeLauncher
	hub        *logging.StreamHub
	socketPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	ctx, cancel := context.WithCancel(context.Background())

	store, err := history.Open(ctx, cfg.HistoryPath(), cfg.History.MaxEntries)
	if err != nil {
		cancel()
		t.Fatalf("history.Open: %v", err)
	}

	logger := logging.NewNop()
	hub := logging.NewStreamHub(128)
	launcher := testsupport.NewFakeLauncher()
	sup := supervisor.New(cfg, logger,
		supervisor.WithLauncher(launcher),
		supervisor.WithRecorder(daemon.NewRecorder(store)))

	d, err := daemon.New(cfg, logger, sup, store, hub)
	if err != nil {
		cancel()
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := filepath.Join(cfg.Paths.StateDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		cancel()
		d.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	time.Sleep(50 * time.Millisecond)

	env := &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		launcher:   launcher,
		hub:        hub,
		socketPath: socketPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

func runCLI(t *testing.T, socket string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--socket", socket}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (env *cliTestEnv) waitForPhase(t *testing.T, phase string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if env.daemon.WorkerStatus().Phase.String() == phase {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("worker never reached phase %q, currently %q",
		phase, env.daemon.WorkerStatus().Phase.String())
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
