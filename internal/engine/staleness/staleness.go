// Package staleness decides which tasks a build must (re)run: the
// StalenessAnalyzer walks a validated Graph in topological order, comparing
// each task's dependency and target digests against the HashStore, and
// contaminates every downstream task once an upstream one is found
// unfinished.
package staleness

import (
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/loom/internal/engine/digest"
	"go.trai.ch/zerr"
)

// Analyzer computes the set of unfinished task ids for a build.
type Analyzer struct {
	digest *digest.Computer
	store  ports.HashStore
	logger ports.Logger
}

// New creates an Analyzer.
func New(hasher ports.Hasher, store ports.HashStore, renderer ports.TemplateResolver, logger ports.Logger) *Analyzer {
	return &Analyzer{digest: digest.New(hasher, renderer), store: store, logger: logger}
}

// Unfinished is the set of task ids a build must execute, as decided by
// Analyze.
type Unfinished map[domain.ID]struct{}

// Has reports whether id is unfinished.
func (u Unfinished) Has(id domain.ID) bool {
	_, ok := u[id]
	return ok
}

// Analyze walks g in topological order (Validate must already have
// succeeded) and returns the set of task ids that must run. As a side
// effect, the HashStore is updated with every freshly observed digest; the
// caller is responsible for calling Flush once all of analysis's writes
// should be made durable.
func (a *Analyzer) Analyze(g *domain.Graph) (Unfinished, error) {
	unfinished := make(Unfinished)
	contaminated := make(map[domain.ID]struct{})

	for task := range g.WalkTasks() {
		isUnfinished := task.RunAlways
		if _, ok := contaminated[task.ID]; ok {
			isUnfinished = true
		}

		// A run_always task is unfinished regardless of its digests, so its
		// neighbors are neither hashed nor compared against the store.
		var neighbors []domain.ID
		if !task.RunAlways {
			neighbors = append(neighbors, g.Predecessors(task.ID)...)
			neighbors = append(neighbors, g.Successors(task.ID)...)
		}

		for _, neighbor := range neighbors {
			entries, exists, err := a.digest.Of(task, neighbor)
			if err != nil {
				return nil, err
			}
			if !exists {
				isUnfinished = true
				continue
			}

			for _, entry := range entries {
				key := domain.HashKey{TaskID: task.ID, ArtifactKey: entry.Path}
				stored, found, err := a.store.Get(key)
				if err != nil {
					return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
				}
				if found && stored == entry.Digest {
					continue
				}

				isUnfinished = true
				if err := a.store.Put(domain.HashEntry{TaskID: task.ID, ArtifactKey: entry.Path, Digest: entry.Digest}); err != nil {
					return nil, zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
				}
			}
		}

		if !isUnfinished {
			continue
		}

		unfinished[task.ID] = struct{}{}
		a.logger.Info("task unfinished", "task", task.ID.String())

		for _, downstream := range g.DownstreamTasks(task.ID) {
			contaminated[downstream] = struct{}{}
		}
	}

	return unfinished, nil
}
