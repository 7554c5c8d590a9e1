package worker

import "testing"

func TestCommandLines(t *testing.T) {
	cases := []struct {
		cmd  Command
		line string
	}{
		{LoadModel{Model: "tiny.en"}, "load-model(tiny.en)"},
		{LoadModel{Model: "large-v3"}, "load-model(large-v3)"},
		{TranscribeAudio{Path: "/tmp/audio.wav"}, `transcribe-audio("/tmp/audio.wav")`},
		{TranscribeAudio{Path: "/tmp/with spaces/clip.mp3"}, `transcribe-audio("/tmp/with spaces/clip.mp3")`},
		{ListModels{}, "list-models()"},
		{Shutdown{}, "exit()"},
	}
	for _, tc := range cases {
		if got := tc.cmd.Line(); got != tc.line {
			t.Errorf("expected %q, got %q", tc.line, got)
		}
	}
}
