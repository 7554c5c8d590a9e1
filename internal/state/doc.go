// Package state encodes the supervisor workflow as a pure transition table.
//
// Phases move Initial -> Processing -> Running -> ModelReady -> Transcribed as
// the worker starts, loads a model, and completes a transcription. Events that
// have no edge from the current phase are ignored rather than treated as
// errors: the worker's text stream carries no ordering contract, so the
// machine is deliberately best-effort. Ending a session returns to Initial
// from every phase, and the machine is re-enterable for the next session.
package state
