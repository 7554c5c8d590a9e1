package state

// Phase is the supervisor-visible workflow state.
type Phase int

const (
	// Initial means no worker session exists.
	Initial Phase = iota
	// Processing means the worker is busy (starting, loading, or transcribing).
	Processing
	// Running means the worker finished setup and is idle with no model.
	Running
	// ModelReady means a model is loaded and transcription can start.
	ModelReady
	// Transcribed means a completed result is available.
	Transcribed
)

// String returns the phase name used in status output and logs.
func (p Phase) String() string {
	switch p {
	case Initial:
		return "initial"
	case Processing:
		return "processing"
	case Running:
		return "running"
	case ModelReady:
		return "model-ready"
	case Transcribed:
		return "transcribed"
	default:
		return "unknown"
	}
}

// Event is an input to the workflow machine. Command events are produced by
// the supervisor when it issues worker commands; observation events are
// produced from decoded worker output.
type Event int

const (
	// EventStartSucceeded fires when a worker session spawns successfully.
	EventStartSucceeded Event = iota
	// EventWorkerReady fires when the worker reports setup complete.
	EventWorkerReady
	// EventLoadModelIssued fires when a load-model command is written.
	EventLoadModelIssued
	// EventModelLoaded fires when the worker reports a loaded model.
	EventModelLoaded
	// EventTranscribeIssued fires when a transcribe command is written.
	EventTranscribeIssued
	// EventResultReceived fires when a JSON block parses into a result.
	EventResultReceived
	// EventSessionEnded fires on stop, worker exit, or spawn teardown.
	EventSessionEnded
)

// String returns the event name used in logs.
func (e Event) String() string {
	switch e {
	case EventStartSucceeded:
		return "start-succeeded"
	case EventWorkerReady:
		return "worker-ready"
	case EventLoadModelIssued:
		return "load-model-issued"
	case EventModelLoaded:
		return "model-loaded"
	case EventTranscribeIssued:
		return "transcribe-issued"
	case EventResultReceived:
		return "result-received"
	case EventSessionEnded:
		return "session-ended"
	default:
		return "unknown"
	}
}

// transitions holds every edge except session end, which applies from any
// phase.
var transitions = map[Phase]map[Event]Phase{
	Initial: {
		EventStartSucceeded: Processing,
	},
	Processing: {
		EventWorkerReady:    Running,
		EventModelLoaded:    ModelReady,
		EventResultReceived: Transcribed,
	},
	Running: {
		EventLoadModelIssued: Processing,
	},
	ModelReady: {
		EventLoadModelIssued:  Processing,
		EventTranscribeIssued: Processing,
	},
	Transcribed: {
		EventLoadModelIssued:  Processing,
		EventTranscribeIssued: Processing,
	},
}

// Next applies event to phase. The second return reports whether the event
// matched an edge; when false the phase is returned unchanged and the caller
// treats the event as a no-op.
func Next(phase Phase, event Event) (Phase, bool) {
	if event == EventSessionEnded {
		return Initial, phase != Initial
	}
	edges, ok := transitions[phase]
	if !ok {
		return phase, false
	}
	next, ok := edges[event]
	if !ok {
		return phase, false
	}
	return next, true
}
