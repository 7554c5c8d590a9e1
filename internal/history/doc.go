// Package history persists completed transcriptions in SQLite.
//
// The store keeps one row per completed transcription: the model, source
// audio path, language, timings, the plain transcript, and the raw worker
// payload. Old rows beyond the configured cap are pruned on insert, oldest
// first. Schema changes bump schemaVersion; a mismatched database must be
// deleted to adopt the new schema.
package history
