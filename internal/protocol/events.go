package protocol

// Event is a typed observation decoded from one worker output line.
// Implementations are immutable values safe to hand across goroutines.
type Event interface {
	event()
}

// LogLine is a raw worker output line outside JSON capture.
type LogLine struct {
	Text string
}

// Progress is a progress=<n> marker, percent clamped to 0-100.
type Progress struct {
	Percent int
}

// JSONBlock is the raw text between a pair of JSON delimiters.
type JSONBlock struct {
	Text string
}

// ModelLoaded reports the worker finished loading the named model.
type ModelLoaded struct {
	Model string
}

// StatusHint is a human-readable status inferred from worker log phrasing.
type StatusHint struct {
	Message string
}

// WorkerReady reports the worker finished its environment setup.
type WorkerReady struct{}

func (LogLine) event()     {}
func (Progress) event()    {}
func (JSONBlock) event()   {}
func (ModelLoaded) event() {}
func (StatusHint) event()  {}
func (WorkerReady) event() {}
