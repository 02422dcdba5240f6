package domain

// TaskRecord is an immutable task declaration, produced by the loader after
// defaults have been filled in and id-valued dependencies rewritten to the
// upstream task's first produces entry.
type TaskRecord struct {
	ID ID

	// Template is the logical template name (e.g. "task.py", "ols.r").
	Template string

	// DependsOn is the ordered, already-rewritten sequence of artifact keys
	// this task waits on. Task-id references have been replaced with the
	// referenced task's first Produces entry by the time a TaskRecord exists.
	DependsOn []string

	// Produces is the ordered sequence of output paths this task writes.
	Produces []string

	// ConfigPath is the declaration file this task was loaded from.
	ConfigPath string

	// RunAlways forces the task unfinished on every build regardless of hashes.
	RunAlways bool

	// Priority is the user-declared priority; EffectivePriority (computed by
	// the graph) adds a discounted sum of downstream priorities on top.
	Priority float64

	// Parameters is the free-form mapping passed to the template renderer.
	Parameters map[string]any
}

// FirstProduces returns the task's first output path, or "" if it has none.
// Used when rewriting a depends_on entry that names another task's id.
func (t *TaskRecord) FirstProduces() string {
	if len(t.Produces) == 0 {
		return ""
	}
	return t.Produces[0]
}
