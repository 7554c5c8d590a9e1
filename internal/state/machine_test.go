package state_test

import (
	"testing"

	"scribe/internal/state"
)

var allPhases = []state.Phase{
	state.Initial,
	state.Processing,
	state.Running,
	state.ModelReady,
	state.Transcribed,
}

var allEvents = []state.Event{
	state.EventStartSucceeded,
	state.EventWorkerReady,
	state.EventLoadModelIssued,
	state.EventModelLoaded,
	state.EventTranscribeIssued,
	state.EventResultReceived,
	state.EventSessionEnded,
}

func TestNextEdges(t *testing.T) {
	cases := []struct {
		from  state.Phase
		event state.Event
		to    state.Phase
	}{
		{state.Initial, state.EventStartSucceeded, state.Processing},
		{state.Processing, state.EventWorkerReady, state.Running},
		{state.Processing, state.EventModelLoaded, state.ModelReady},
		{state.Processing, state.EventResultReceived, state.Transcribed},
		{state.Running, state.EventLoadModelIssued, state.Processing},
		{state.ModelReady, state.EventLoadModelIssued, state.Processing},
		{state.ModelReady, state.EventTranscribeIssued, state.Processing},
		{state.Transcribed, state.EventLoadModelIssued, state.Processing},
		{state.Transcribed, state.EventTranscribeIssued, state.Processing},
	}
	for _, tc := range cases {
		next, ok := state.Next(tc.from, tc.event)
		if !ok {
			t.Errorf("%s + %s: expected transition", tc.from, tc.event)
			continue
		}
		if next != tc.to {
			t.Errorf("%s + %s: expected %s, got %s", tc.from, tc.event, tc.to, next)
		}
	}
}

func TestNextSessionEndedFromAnyPhase(t *testing.T) {
	for _, phase := range allPhases {
		next, ok := state.Next(phase, state.EventSessionEnded)
		if next != state.Initial {
			t.Errorf("%s + session-ended: expected initial, got %s", phase, next)
		}
		if phase == state.Initial && ok {
			t.Error("session end from initial should be a no-op")
		}
		if phase != state.Initial && !ok {
			t.Errorf("session end from %s should transition", phase)
		}
	}
}

func TestNextRejectsUnknownEdges(t *testing.T) {
	// Every pair not in the edge table leaves the phase unchanged.
	valid := map[[2]string]bool{}
	addValid := func(p state.Phase, e state.Event) { valid[[2]string{p.String(), e.String()}] = true }
	addValid(state.Initial, state.EventStartSucceeded)
	addValid(state.Processing, state.EventWorkerReady)
	addValid(state.Processing, state.EventModelLoaded)
	addValid(state.Processing, state.EventResultReceived)
	addValid(state.Running, state.EventLoadModelIssued)
	addValid(state.ModelReady, state.EventLoadModelIssued)
	addValid(state.ModelReady, state.EventTranscribeIssued)
	addValid(state.Transcribed, state.EventLoadModelIssued)
	addValid(state.Transcribed, state.EventTranscribeIssued)

	for _, phase := range allPhases {
		for _, event := range allEvents {
			if event == state.EventSessionEnded {
				continue
			}
			if valid[[2]string{phase.String(), event.String()}] {
				continue
			}
			next, ok := state.Next(phase, event)
			if ok {
				t.Errorf("%s + %s: unexpected transition to %s", phase, event, next)
			}
			if next != phase {
				t.Errorf("%s + %s: rejected event must not change phase, got %s", phase, event, next)
			}
		}
	}
}

func TestNextStartOnlyFromInitial(t *testing.T) {
	for _, phase := range allPhases {
		if phase == state.Initial {
			continue
		}
		if _, ok := state.Next(phase, state.EventStartSucceeded); ok {
			t.Errorf("start-succeeded must not fire from %s", phase)
		}
	}
}
