package models

import "testing"

func TestKnown(t *testing.T) {
	for _, name := range []string{"tiny", "tiny.en", "large-v3"} {
		if !Known(name) {
			t.Fatalf("expected %q to be known", name)
		}
	}
	for _, name := range []string{"", "huge", "TINY", "tiny.en "} {
		if Known(name) {
			t.Fatalf("expected %q to be unknown", name)
		}
	}
}

func TestNamesMatchCatalogOrder(t *testing.T) {
	names := Names()
	if len(names) != len(Catalog) {
		t.Fatalf("expected %d names, got %d", len(Catalog), len(names))
	}
	for i, m := range Catalog {
		if names[i] != m.Name {
			t.Fatalf("name %d = %q, want %q", i, names[i], m.Name)
		}
	}
	if names[0] != "tiny" || names[len(names)-1] != "large-v3" {
		t.Fatalf("unexpected ordering: first %q, last %q", names[0], names[len(names)-1])
	}
}

func TestCatalogHasSizes(t *testing.T) {
	for _, m := range Catalog {
		if m.Size == "" {
			t.Fatalf("model %q missing size", m.Name)
		}
	}
}
