package domain

import "testing"

func TestIDInterning(t *testing.T) {
	a := NewID("task-1")
	b := NewID("task-1")

	if a.Value() != b.Value() {
		t.Errorf("expected identical strings to intern to the same handle, got %v and %v", a.Value(), b.Value())
	}
	if a.String() != "task-1" {
		t.Errorf("String() = %q, want %q", a.String(), "task-1")
	}
}

func TestSortIDs(t *testing.T) {
	ids := NewIDs([]string{"c", "a", "b"})
	SortIDs(ids)

	got := make([]string, len(ids))
	for i, id := range ids {
		got[i] = id.String()
	}

	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortIDs() = %v, want %v", got, want)
		}
	}
}
