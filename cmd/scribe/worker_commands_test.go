package main

import (
	"strings"
	"testing"
)

func TestStatusCommandBeforeStart(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.socketPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "== Daemon ==")
	requireContains(t, stdout, "Running:")
	requireContains(t, stdout, "[OK] yes")
	requireContains(t, stdout, "== Worker ==")
	requireContains(t, stdout, "[WARN] initial")
	requireContains(t, stdout, "history.db")
}

func TestStartStopCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.socketPath, "start")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, stdout, "Worker started")

	stdout, _, err = runCLI(t, env.socketPath, "start")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	requireContains(t, stdout, "already running")

	env.launcher.Launched(0).EmitLine("Environment setup complete")
	env.waitForPhase(t, "running")

	stdout, _, err = runCLI(t, env.socketPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "[OK] running")
	requireContains(t, stdout, "Session:")

	stdout, _, err = runCLI(t, env.socketPath, "stop")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, stdout, "Worker stopped")
	env.waitForPhase(t, "initial")
}

func TestStatusCommandShowsRecentOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env.socketPath, "start"); err != nil {
		t.Fatalf("start: %v", err)
	}
	handle := env.launcher.Launched(0)
	handle.EmitLine("Loading WhisperX pipeline")
	handle.EmitLine("Environment setup complete")
	env.waitForPhase(t, "running")

	stdout, _, err := runCLI(t, env.socketPath, "status", "--log")
	if err != nil {
		t.Fatalf("status --log: %v", err)
	}
	requireContains(t, stdout, "== Recent Output ==")
	requireContains(t, stdout, "Loading WhisperX pipeline")
}

func TestStatusCommandUnreachableDaemon(t *testing.T) {
	_, _, err := runCLI(t, "/nonexistent/scribed.sock", "status")
	if err == nil {
		t.Fatal("expected an error for a missing socket")
	}
	if !strings.Contains(err.Error(), "scribed") {
		t.Fatalf("expected the error to mention the daemon, got %v", err)
	}
}
