// Package models holds the static WhisperX model catalog.
//
// The catalog mirrors the table the worker itself prints for list-models();
// it lets the CLI validate load-model input before a round-trip to the
// worker.
package models

// Model describes one WhisperX model the worker can load.
type Model struct {
	Name string
	// Size is the approximate download size, as the worker reports it.
	Size string
}

// Catalog lists every model the worker accepts, smallest first.
var Catalog = []Model{
	{Name: "tiny", Size: "~39 MB"},
	{Name: "tiny.en", Size: "~39 MB"},
	{Name: "base", Size: "~74 MB"},
	{Name: "base.en", Size: "~74 MB"},
	{Name: "small", Size: "~244 MB"},
	{Name: "small.en", Size: "~244 MB"},
	{Name: "medium", Size: "~769 MB"},
	{Name: "medium.en", Size: "~769 MB"},
	{Name: "large", Size: "~1550 MB"},
	{Name: "large-v1", Size: "~1550 MB"},
	{Name: "large-v2", Size: "~1550 MB"},
	{Name: "large-v3", Size: "~1550 MB"},
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	for _, m := range Catalog {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Names returns the catalog names in order.
func Names() []string {
	out := make([]string, len(Catalog))
	for i, m := range Catalog {
		out[i] = m.Name
	}
	return out
}
