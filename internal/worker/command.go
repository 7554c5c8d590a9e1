package worker

import "fmt"

// Command is one worker stdin instruction. The text forms are exact and
// case-sensitive; each serializes to a single line.
type Command interface {
	// Line returns the command's wire form without the trailing newline.
	Line() string
}

// LoadModel asks the worker to load the named model.
type LoadModel struct {
	Model string
}

// TranscribeAudio asks the worker to transcribe the audio file at Path. The
// path must be absolute; the worker resolves nothing.
type TranscribeAudio struct {
	Path string
}

// ListModels asks the worker to print its model catalog.
type ListModels struct{}

// Shutdown asks the worker to exit on its own.
type Shutdown struct{}

func (c LoadModel) Line() string {
	return fmt.Sprintf("load-model(%s)", c.Model)
}

func (c TranscribeAudio) Line() string {
	return fmt.Sprintf(`transcribe-audio("%s")`, c.Path)
}

func (ListModels) Line() string {
	return "list-models()"
}

func (Shutdown) Line() string {
	return "exit()"
}
