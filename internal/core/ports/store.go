package ports

import "go.trai.ch/loom/internal/core/domain"

// HashStore is the persistent (task_id, artifact_key) -> digest mapping the
// StalenessAnalyzer reads and the Executor writes back after a task
// completes.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type HashStore interface {
	// Get returns the stored digest for key, or ok=false if no row exists.
	Get(key domain.HashKey) (digest string, ok bool, err error)

	// Put upserts a row. A Get for the same key immediately after Put, in
	// the same process, returns the written digest even before Flush.
	Put(entry domain.HashEntry) error

	// Flush persists all pending mutations so they survive a process
	// restart. Called at least once per task completion and once at
	// scheduler shutdown.
	Flush() error
}
