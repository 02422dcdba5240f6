package domain

// HashEntry is one row of the HashStore: the last-known digest of a single
// artifact as it was last seen by a single task. The pair (TaskID,
// ArtifactKey) is the row's key; the same artifact can appear in more than
// one task's rows (once as an input to a consumer, once as an output of its
// producer) and the two rows are tracked independently.
type HashEntry struct {
	TaskID      ID
	ArtifactKey string
	Digest      string // lowercase hex-encoded sha256
}

// Key returns the (task_id, artifact_key) identity used to index a HashStore.
func (h HashEntry) Key() HashKey {
	return HashKey{TaskID: h.TaskID, ArtifactKey: h.ArtifactKey}
}

// HashKey identifies a single HashStore row.
type HashKey struct {
	TaskID      ID
	ArtifactKey string
}
