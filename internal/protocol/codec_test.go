package protocol_test

import (
	"strings"
	"testing"

	"scribe/internal/protocol"
)

func feedAll(t *testing.T, c *protocol.Codec, lines ...string) []protocol.Event {
	t.Helper()
	var events []protocol.Event
	for _, line := range lines {
		events = append(events, c.Feed(line)...)
	}
	return events
}

func TestFeedLogLine(t *testing.T) {
	var c protocol.Codec
	events := c.Feed("some unremarkable output")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	log, ok := events[0].(protocol.LogLine)
	if !ok {
		t.Fatalf("expected LogLine, got %T", events[0])
	}
	if log.Text != "some unremarkable output" {
		t.Fatalf("unexpected text: %q", log.Text)
	}
}

func TestFeedProgress(t *testing.T) {
	cases := []struct {
		line    string
		percent int
		ok      bool
	}{
		{"progress=0", 0, true},
		{"progress=45", 45, true},
		{"progress=100", 100, true},
		{"progress=150", 100, true},
		{"progress=-5", 0, true},
		{"progress=abc", 0, false},
		{"progress=", 0, false},
		{" progress=50", 0, false},
	}
	for _, tc := range cases {
		var c protocol.Codec
		events := c.Feed(tc.line)
		var got *protocol.Progress
		for _, evt := range events {
			if p, ok := evt.(protocol.Progress); ok {
				got = &p
			}
		}
		if tc.ok {
			if got == nil {
				t.Errorf("%q: expected Progress event", tc.line)
				continue
			}
			if got.Percent != tc.percent {
				t.Errorf("%q: expected %d%%, got %d%%", tc.line, tc.percent, got.Percent)
			}
		} else if got != nil {
			t.Errorf("%q: unexpected Progress event %d%%", tc.line, got.Percent)
		}
	}
}

func TestFeedModelLoaded(t *testing.T) {
	var c protocol.Codec
	events := c.Feed("Model 'tiny.en' loaded successfully")
	var loaded *protocol.ModelLoaded
	for _, evt := range events {
		if m, ok := evt.(protocol.ModelLoaded); ok {
			loaded = &m
		}
	}
	if loaded == nil {
		t.Fatal("expected ModelLoaded event")
	}
	if loaded.Model != "tiny.en" {
		t.Fatalf("unexpected model name: %q", loaded.Model)
	}
}

func TestFeedModelMentionWithoutLoad(t *testing.T) {
	var c protocol.Codec
	for _, line := range []string{
		"Model 'tiny.en' failed",
		"loaded something without a model name",
		"Downloading Model 'base'",
	} {
		for _, evt := range c.Feed(line) {
			if _, ok := evt.(protocol.ModelLoaded); ok {
				t.Errorf("%q: unexpected ModelLoaded event", line)
			}
		}
	}
}

func TestFeedStatusHints(t *testing.T) {
	cases := []struct {
		line string
		hint string
	}{
		{"Starting WhisperX service", "Starting service..."},
		{"Setting up environment", "Starting service..."},
		{"Environment setup complete", "Service running"},
		{"Transcribing /tmp/audio.wav", "Transcribing audio..."},
		{"Downloading model weights", "Loading model..."},
		{"Loading model tiny.en", "Loading model..."},
		{"Transcription completed in 3.2s", "Processing transcription..."},
	}
	for _, tc := range cases {
		var c protocol.Codec
		var hint *protocol.StatusHint
		for _, evt := range c.Feed(tc.line) {
			if h, ok := evt.(protocol.StatusHint); ok {
				hint = &h
			}
		}
		if hint == nil {
			t.Errorf("%q: expected StatusHint", tc.line)
			continue
		}
		if hint.Message != tc.hint {
			t.Errorf("%q: expected hint %q, got %q", tc.line, tc.hint, hint.Message)
		}
	}
}

func TestFeedReadySignal(t *testing.T) {
	var c protocol.Codec
	events := c.Feed("Environment setup complete")
	sawReady := false
	for _, evt := range events {
		if _, ok := evt.(protocol.WorkerReady); ok {
			sawReady = true
		}
	}
	if !sawReady {
		t.Fatal("expected WorkerReady event")
	}
}

func TestFeedErrorHint(t *testing.T) {
	var c protocol.Codec
	var hint *protocol.StatusHint
	for _, evt := range c.Feed("worker Error:  something broke ") {
		if h, ok := evt.(protocol.StatusHint); ok {
			hint = &h
		}
	}
	if hint == nil {
		t.Fatal("expected StatusHint")
	}
	if hint.Message != "Error: something broke" {
		t.Fatalf("unexpected hint: %q", hint.Message)
	}
}

func TestFeedErrorBeatsOtherRules(t *testing.T) {
	var c protocol.Codec
	for _, evt := range c.Feed("Transcribing failed, Error: out of memory") {
		if h, ok := evt.(protocol.StatusHint); ok {
			if !strings.HasPrefix(h.Message, "Error:") {
				t.Fatalf("expected error hint to win, got %q", h.Message)
			}
			return
		}
	}
	t.Fatal("expected StatusHint")
}

func TestFeedJSONBlock(t *testing.T) {
	var c protocol.Codec
	events := feedAll(t, &c,
		"Transcription completed",
		protocol.JSONDelimiter,
		`{"transcript": "hello",`,
		`"language": "en"}`,
		protocol.JSONDelimiter,
	)

	var blocks []protocol.JSONBlock
	for _, evt := range events {
		if b, ok := evt.(protocol.JSONBlock); ok {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) != 1 {
		t.Fatalf("expected exactly one JSONBlock, got %d", len(blocks))
	}
	want := "{\"transcript\": \"hello\",\n\"language\": \"en\"}"
	if blocks[0].Text != want {
		t.Fatalf("unexpected block text: %q", blocks[0].Text)
	}
}

func TestFeedCapturedLinesProduceNoEvents(t *testing.T) {
	var c protocol.Codec
	if events := c.Feed(protocol.JSONDelimiter); len(events) != 0 {
		t.Fatalf("opening delimiter should produce no events, got %d", len(events))
	}
	if !c.Capturing() {
		t.Fatal("expected codec to be capturing")
	}
	if events := c.Feed("progress=50"); len(events) != 0 {
		t.Fatalf("captured line should produce no events, got %d", len(events))
	}
}

func TestFeedNearDelimiterIsLogLine(t *testing.T) {
	var c protocol.Codec
	almost := strings.Repeat("=", 59)
	events := c.Feed(almost)
	if c.Capturing() {
		t.Fatal("59 equals signs must not open a block")
	}
	if len(events) == 0 {
		t.Fatal("expected a LogLine event")
	}
	if _, ok := events[0].(protocol.LogLine); !ok {
		t.Fatalf("expected LogLine, got %T", events[0])
	}
}

func TestFeedDelimiterPairing(t *testing.T) {
	var c protocol.Codec
	lines := []string{
		protocol.JSONDelimiter,
		`{"a": 1}`,
		protocol.JSONDelimiter,
		"log line between blocks",
		protocol.JSONDelimiter,
		`{"b": 2}`,
		protocol.JSONDelimiter,
	}
	var blocks []string
	for _, line := range lines {
		for _, evt := range c.Feed(line) {
			if b, ok := evt.(protocol.JSONBlock); ok {
				blocks = append(blocks, b.Text)
			}
		}
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0] != `{"a": 1}` || blocks[1] != `{"b": 2}` {
		t.Fatalf("unexpected blocks: %#v", blocks)
	}
	if c.Capturing() {
		t.Fatal("codec should not be capturing after balanced delimiters")
	}
}

func TestResetDropsPartialCapture(t *testing.T) {
	var c protocol.Codec
	c.Feed(protocol.JSONDelimiter)
	c.Feed(`{"partial":`)
	c.Reset()
	if c.Capturing() {
		t.Fatal("reset should clear capture state")
	}
	events := c.Feed("plain line")
	if len(events) != 1 {
		t.Fatalf("expected 1 event after reset, got %d", len(events))
	}
	if _, ok := events[0].(protocol.LogLine); !ok {
		t.Fatalf("expected LogLine, got %T", events[0])
	}
}

func TestFeedInvalidUTF8(t *testing.T) {
	var c protocol.Codec
	events := c.Feed("bad \xff byte")
	log, ok := events[0].(protocol.LogLine)
	if !ok {
		t.Fatalf("expected LogLine, got %T", events[0])
	}
	if log.Text != "bad � byte" {
		t.Fatalf("expected replacement rune, got %q", log.Text)
	}
}
