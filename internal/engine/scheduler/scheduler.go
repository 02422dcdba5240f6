// Package scheduler answers "which task next?" for a single build
// invocation. It owns RunState exclusively: the set of unfinished tasks,
// which of them are ready, which are in flight, and each task's remaining
// upstream-dependency count. It never runs a task itself — the Executor
// pulls proposals from it and reports completions back.
package scheduler

import (
	"sort"
	"sync"

	"go.trai.ch/loom/internal/core/domain"
)

// Scheduler is seeded once per build with the graph and the set of
// unfinished task ids, and is then driven by Propose/Complete until
// HasWork returns false. All exported methods are safe for the coordinator
// to call from a single goroutine; internal state is additionally
// mutex-guarded so the parallel Executor's reaper goroutine may call
// Complete while the main loop calls Propose.
type Scheduler struct {
	graph           *domain.Graph
	priorityEnabled bool

	mu            sync.Mutex
	unfinished    map[domain.ID]struct{}
	ready         []domain.ID
	inFlight      map[domain.ID]struct{}
	remainingDeps map[domain.ID]map[domain.ID]struct{}
}

// New seeds a Scheduler from g and the set of unfinished task ids (as
// decided by the StalenessAnalyzer). remaining_deps[t] is initialized to
// the subset of t's upstream tasks that are themselves unfinished; any
// task with no unfinished upstream starts ready.
func New(g *domain.Graph, unfinished map[domain.ID]struct{}, priorityEnabled bool) *Scheduler {
	s := &Scheduler{
		graph:           g,
		priorityEnabled: priorityEnabled,
		unfinished:      make(map[domain.ID]struct{}, len(unfinished)),
		inFlight:        make(map[domain.ID]struct{}),
		remainingDeps:   make(map[domain.ID]map[domain.ID]struct{}, len(unfinished)),
	}

	for id := range unfinished {
		s.unfinished[id] = struct{}{}
	}

	for id := range s.unfinished {
		deps := make(map[domain.ID]struct{})
		for _, upstream := range upstreamTasks(g, id) {
			if _, ok := s.unfinished[upstream]; ok {
				deps[upstream] = struct{}{}
			}
		}
		s.remainingDeps[id] = deps
		if len(deps) == 0 {
			s.ready = append(s.ready, id)
		}
	}

	return s
}

// Propose returns up to k currently-ready task ids, moving them from ready
// to in_flight. k = -1 returns every ready task. When priority scheduling
// is enabled, results are ordered by descending effective priority, ties
// broken by ascending id; otherwise results are id-sorted for determinism.
func (s *Scheduler) Propose(k int) []domain.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.ready
	s.ready = nil

	if s.priorityEnabled {
		sort.SliceStable(candidates, func(i, j int) bool {
			pi := s.graph.EffectivePriority(candidates[i])
			pj := s.graph.EffectivePriority(candidates[j])
			if pi != pj {
				return pi > pj
			}
			return domain.Less(candidates[i], candidates[j])
		})
	} else {
		domain.SortIDs(candidates)
	}

	n := len(candidates)
	if k >= 0 && k < n {
		n = k
	}

	chosen := candidates[:n]
	s.ready = append(s.ready, candidates[n:]...)

	for _, id := range chosen {
		s.inFlight[id] = struct{}{}
	}
	return chosen
}

// Complete reports that every id in ids has finished successfully: each is
// removed from in_flight and from every other task's remaining_deps, and
// any task whose remaining_deps becomes empty is promoted to ready.
func (s *Scheduler) Complete(ids []domain.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.inFlight, id)
		delete(s.unfinished, id)

		for other, deps := range s.remainingDeps {
			if _, ok := deps[id]; !ok {
				continue
			}
			delete(deps, id)
			if len(deps) == 0 {
				s.ready = append(s.ready, other)
				delete(s.remainingDeps, other)
			}
		}
	}
}

// HasWork reports whether any task is in flight or remains unfinished
// outside of in_flight.
func (s *Scheduler) HasWork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inFlight) > 0 {
		return true
	}
	for id := range s.unfinished {
		if _, inFlight := s.inFlight[id]; !inFlight {
			return true
		}
	}
	return false
}

// upstreamTasks returns the distinct task ids that produce an artifact
// taskID directly depends on.
func upstreamTasks(g *domain.Graph, taskID domain.ID) []domain.ID {
	seen := make(map[domain.ID]struct{})
	var result []domain.ID
	for _, artifact := range g.Predecessors(taskID) {
		for _, producer := range g.Predecessors(artifact) {
			if !g.IsTask(producer) {
				continue
			}
			if _, ok := seen[producer]; ok {
				continue
			}
			seen[producer] = struct{}{}
			result = append(result, producer)
		}
	}
	return result
}
