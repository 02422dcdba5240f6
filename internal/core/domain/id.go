package domain

import (
	"slices"
	"unique"
)

// ID is an interned string used for task ids and artifact keys, both of
// which repeat heavily across a graph's edges and a hash store's rows.
type ID struct {
	h unique.Handle[string]
}

// NewID interns s and returns the resulting ID.
func NewID(s string) ID {
	return ID{h: unique.Make(s)}
}

// NewIDs interns every element of strs, preserving order.
func NewIDs(strs []string) []ID {
	if len(strs) == 0 {
		return nil
	}
	ids := make([]ID, len(strs))
	for i, s := range strs {
		ids[i] = NewID(s)
	}
	return ids
}

// String returns the underlying string value.
func (id ID) String() string {
	return id.h.Value()
}

// Value returns the underlying unique.Handle, usable as a map key.
func (id ID) Value() unique.Handle[string] {
	return id.h
}

// Less orders two IDs lexicographically by their string value. Used wherever
// the spec requires deterministic tie-breaking (e.g. scheduler proposal order).
func Less(a, b ID) bool {
	return a.String() < b.String()
}

// SortIDs sorts ids lexicographically in place.
func SortIDs(ids []ID) {
	slices.SortFunc(ids, func(a, b ID) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		default:
			return 0
		}
	})
}
