package main

import (
	"testing"

	"scribe/internal/ipc"
	"scribe/internal/logging"
)

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	env.hub.Publish(logging.LogEvent{Level: "INFO", Message: "daemon ready"})
	env.hub.Publish(logging.LogEvent{
		Level:     "WARN",
		Message:   "model loaded",
		Component: "supervisor",
		Fields:    map[string]string{"model": "tiny.en"},
	})

	stdout, _, err := runCLI(t, env.socketPath, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, stdout, "INFO daemon ready")
	requireContains(t, stdout, "WARN [supervisor] model loaded model=tiny.en")
}

func TestFormatLogEvent(t *testing.T) {
	evt := ipc.LogEvent{
		Timestamp: "2026-03-14T09:30:00Z",
		Level:     "INFO",
		Component: "worker",
		Message:   "session started",
		Fields: map[string]string{
			"model":   "tiny.en",
			"attempt": "1",
		},
	}
	got := formatLogEvent(evt)
	want := "2026-03-14T09:30:00Z INFO [worker] session started attempt=1 model=tiny.en"
	if got != want {
		t.Fatalf("formatLogEvent = %q, want %q", got, want)
	}
}

func TestFormatLogEventNoComponent(t *testing.T) {
	evt := ipc.LogEvent{Timestamp: "ts", Level: "DEBUG", Message: "tick"}
	if got := formatLogEvent(evt); got != "ts DEBUG tick" {
		t.Fatalf("formatLogEvent = %q", got)
	}
}

func TestLevelColor(t *testing.T) {
	if levelColor("error") != ansiRed {
		t.Fatal("error level must be red")
	}
	if levelColor("WARN") != ansiYellow {
		t.Fatal("warn level must be yellow")
	}
	if levelColor("INFO") != "" {
		t.Fatal("info level must be uncolored")
	}
}
