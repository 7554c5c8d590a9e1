package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestStatusLineRenderNoColor(t *testing.T) {
	got := statusLine{label: "Phase", kind: statusError, message: "stopped"}.render(false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Phase:", "[ERROR] stopped")
	if got != want {
		t.Fatalf("render mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusLineRenderWithColor(t *testing.T) {
	got := statusLine{label: "Phase", kind: statusOK, message: "running"}.render(true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusLineRenderEmptyMessage(t *testing.T) {
	got := statusLine{label: "Model", kind: statusWarn}.render(false)
	if !strings.Contains(got, "[WARN]") || strings.Contains(got, "[WARN] ") {
		t.Fatalf("expected bare status marker, got %q", got)
	}
}

func TestPhaseLine(t *testing.T) {
	if phaseLine("initial").kind != statusWarn {
		t.Fatal("initial must render as a warning")
	}
	if phaseLine("processing").kind != statusInfo {
		t.Fatal("processing must render as info")
	}
	for _, phase := range []string{"running", "model-ready", "transcribed"} {
		if phaseLine(phase).kind != statusOK {
			t.Fatalf("phase %q must render as OK", phase)
		}
	}
}

func TestRunningLine(t *testing.T) {
	up := runningLine(true)
	if up.kind != statusOK || up.message != "yes" {
		t.Fatalf("unexpected running line: %#v", up)
	}
	down := runningLine(false)
	if down.kind != statusWarn || down.message != "no" {
		t.Fatalf("unexpected stopped line: %#v", down)
	}
}

func TestStatusTextLine(t *testing.T) {
	if statusTextLine("Error: worker pipe closed").kind != statusError {
		t.Fatal("expected error status to be flagged")
	}
	if statusTextLine("Service running").kind != statusInfo {
		t.Fatal("plain status must not be flagged")
	}
	if statusTextLine("Err").kind != statusInfo {
		t.Fatal("short text must not be flagged")
	}
}

func TestExitCodeLine(t *testing.T) {
	if exitCodeLine(0).kind != statusOK {
		t.Fatal("clean exit must render as OK")
	}
	if exitCodeLine(137).kind != statusError {
		t.Fatal("nonzero exit must render as an error")
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Worker", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Worker ==" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule length mismatch: %q", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}
