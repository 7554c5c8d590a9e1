package main

import (
	"strings"
	"testing"

	"scribe/internal/ipc"
)

func TestRenderModelsTable(t *testing.T) {
	got := renderModelsTable([]ipc.ModelInfo{
		{Name: "tiny.en", Size: "39 MB"},
		{Name: "base.en", Size: "74 MB", Loaded: true},
	})
	for _, want := range []string{"Model", "Size", "Status", "tiny.en", "74 MB"} {
		if !strings.Contains(got, want) {
			t.Fatalf("table missing %q:\n%s", want, got)
		}
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "loaded") && !strings.Contains(line, "base.en") {
			t.Fatalf("loaded flag on the wrong row:\n%s", got)
		}
	}
}

func TestRenderHistoryTable(t *testing.T) {
	got := renderHistoryTable([]ipc.HistoryEntry{{
		ID:            "0b5718ab-4201-4435-a810-1c7dcd4727a1",
		Model:         "tiny.en",
		AudioPath:     "/audio/meeting.wav",
		AudioDuration: 12.5,
		Transcript:    "The quick brown fox.",
		CompletedAt:   "2026-08-01T12:00:00Z",
	}})
	for _, want := range []string{"0b5718ab", "meeting.wav", "12.5s", "The quick brown fox."} {
		if !strings.Contains(got, want) {
			t.Fatalf("table missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "/audio/meeting.wav") {
		t.Fatalf("expected base name only:\n%s", got)
	}
}
