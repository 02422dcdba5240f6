// Package domain contains the core domain models for the task/artifact
// dependency graph: immutable TaskRecords, the bipartite Graph built from
// them, and hash-store rows.
package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// NodeKind distinguishes a Graph node that carries a full task declaration
// from one that is merely a path-like artifact key.
type NodeKind int

const (
	// ArtifactNode carries only a path-like key: a source file, a template,
	// or a produced output.
	ArtifactNode NodeKind = iota
	// TaskNode carries a full TaskRecord plus its computed EffectivePriority.
	TaskNode
)

// node is the graph's internal representation of either node kind.
type node struct {
	kind              NodeKind
	task              TaskRecord // valid only when kind == TaskNode
	effectivePriority float64
}

// Graph is a directed acyclic graph of task and artifact nodes. Edges run
// from a task's dependencies (and its template/config inputs) to the task,
// and from the task to each artifact it produces.
type Graph struct {
	nodes map[ID]*node
	// forward[u] lists nodes that u has an edge into (u -> v).
	forward map[ID][]ID
	// backward[v] lists nodes with an edge into v (u -> v).
	backward map[ID][]ID

	executionOrder []ID
	producedBy     map[ID]ID // artifact key -> producing task id, for conflict detection
}

// NewGraph creates a new, empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[ID]*node),
		forward:    make(map[ID][]ID),
		backward:   make(map[ID][]ID),
		producedBy: make(map[ID]ID),
	}
}

func (g *Graph) ensureArtifact(key ID) {
	if _, ok := g.nodes[key]; !ok {
		g.nodes[key] = &node{kind: ArtifactNode}
	}
}

func (g *Graph) addEdge(from, to ID) {
	g.forward[from] = append(g.forward[from], to)
	g.backward[to] = append(g.backward[to], from)
}

// AddTask inserts t into the graph: edges from each dependency, from the
// template, and from the config path to t; edges from t to each produced
// artifact. Two tasks declaring the same produces entry is a fatal
// ErrConflictingProducers. A duplicate task id is ErrTaskAlreadyExists.
func (g *Graph) AddTask(t TaskRecord) error {
	if existing, ok := g.nodes[t.ID]; ok && existing.kind == TaskNode {
		return zerr.With(ErrTaskAlreadyExists, "task_id", t.ID.String())
	}

	g.nodes[t.ID] = &node{kind: TaskNode, task: t}

	for _, dep := range t.DependsOn {
		depID := NewID(dep)
		g.ensureArtifact(depID)
		g.addEdge(depID, t.ID)
	}

	if t.Template != "" {
		templateID := NewID(t.Template)
		g.ensureArtifact(templateID)
		g.addEdge(templateID, t.ID)
	}

	if t.ConfigPath != "" {
		configID := NewID(t.ConfigPath)
		g.ensureArtifact(configID)
		g.addEdge(configID, t.ID)
	}

	for _, out := range t.Produces {
		outID := NewID(out)
		if producer, exists := g.producedBy[outID]; exists && producer != t.ID {
			return zerr.With(zerr.With(ErrConflictingProducers, "artifact", out), "tasks",
				producer.String()+", "+t.ID.String())
		}
		g.producedBy[outID] = t.ID
		g.ensureArtifact(outID)
		g.addEdge(t.ID, outID)
	}

	return nil
}

// IsTask reports whether id names a task node.
func (g *Graph) IsTask(id ID) bool {
	n, ok := g.nodes[id]
	return ok && n.kind == TaskNode
}

// GetTask retrieves a task by id.
func (g *Graph) GetTask(id ID) (TaskRecord, bool) {
	n, ok := g.nodes[id]
	if !ok || n.kind != TaskNode {
		return TaskRecord{}, false
	}
	return n.task, true
}

// EffectivePriority returns the task's computed effective priority. Zero for
// unknown or non-task ids, and zero for every node until PropagatePriority
// has run.
func (g *Graph) EffectivePriority(id ID) float64 {
	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return n.effectivePriority
}

// Predecessors returns the nodes with an edge into id (its dependencies and,
// for a task, its template/config inputs).
func (g *Graph) Predecessors(id ID) []ID {
	return g.backward[id]
}

// Successors returns the nodes id has an edge into (a task's produced
// artifacts, or the tasks that consume an artifact).
func (g *Graph) Successors(id ID) []ID {
	return g.forward[id]
}

// TaskIDs returns every task node id in the graph, in no particular order.
func (g *Graph) TaskIDs() []ID {
	ids := make([]ID, 0, len(g.nodes))
	for id, n := range g.nodes {
		if n.kind == TaskNode {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate performs a topological sort, rejecting the graph if it contains a
// cycle, and populates the execution order used by Walk and priority
// propagation.
func (g *Graph) Validate() error {
	visited := make(map[ID]int) // 0 unvisited, 1 visiting, 2 done
	order := make([]ID, 0, len(g.nodes))
	var path []ID

	ids := make([]ID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	SortIDs(ids)

	var visit func(u ID) error
	visit = func(u ID) error {
		visited[u] = 1
		path = append(path, u)

		for _, v := range g.forward[u] {
			switch visited[v] {
			case 1:
				return g.cycleError(path, v)
			case 0:
				if err := visit(v); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	for _, id := range ids {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	// order is reverse-topological (sinks first); reverse it so Walk yields
	// sources first, which is the order tasks may execute in.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	g.executionOrder = order
	return nil
}

func (g *Graph) cycleError(path []ID, closing ID) error {
	start := 0
	for i, id := range path {
		if id == closing {
			start = i
			break
		}
	}
	cycle := ""
	for i := start; i < len(path); i++ {
		cycle += path[i].String() + " -> "
	}
	cycle += closing.String()
	return zerr.With(ErrCycleDetected, "cycle", cycle)
}

// Walk returns an iterator over every node in topological order (sources
// first). Validate must have returned nil first.
func (g *Graph) Walk() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for _, id := range g.executionOrder {
			if !yield(id) {
				return
			}
		}
	}
}

// WalkTasks is Walk filtered to task nodes only, in topological order.
func (g *Graph) WalkTasks() iter.Seq[TaskRecord] {
	return func(yield func(TaskRecord) bool) {
		for _, id := range g.executionOrder {
			n := g.nodes[id]
			if n.kind == TaskNode {
				if !yield(n.task) {
					return
				}
			}
		}
	}
}

// PropagatePriority computes each task's effective priority in reverse
// topological order:
//
//	effective(t) = declared(t) + discount * sum(effective(d) for d in downstream(t))
//
// where downstream(t) is the set of tasks reachable from t through exactly
// one produces-edge hop (tasks that consume one of t's outputs). Validate
// must have been called first. Skipped entirely when priority scheduling is
// disabled; callers should simply not invoke this and effective priorities
// stay at their zero value.
func (g *Graph) PropagatePriority(discount float64) {
	for i := len(g.executionOrder) - 1; i >= 0; i-- {
		id := g.executionOrder[i]
		n := g.nodes[id]
		if n.kind != TaskNode {
			continue
		}

		sum := 0.0
		for _, downstream := range g.downstreamTasks(id) {
			sum += g.nodes[downstream].effectivePriority
		}
		n.effectivePriority = n.task.Priority + discount*sum
	}
}

// DownstreamTasks returns the distinct task ids that consume any artifact
// produced by taskID — the tasks reachable through exactly one
// produces-artifact hop, used both for priority propagation and for staleness
// contamination.
func (g *Graph) DownstreamTasks(taskID ID) []ID {
	return g.downstreamTasks(taskID)
}

// downstreamTasks returns the distinct task ids that consume any artifact
// produced by the task id.
func (g *Graph) downstreamTasks(taskID ID) []ID {
	seen := make(map[ID]struct{})
	var result []ID
	for _, artifact := range g.forward[taskID] {
		for _, consumer := range g.forward[artifact] {
			if g.nodes[consumer].kind != TaskNode {
				continue
			}
			if _, ok := seen[consumer]; ok {
				continue
			}
			seen[consumer] = struct{}{}
			result = append(result, consumer)
		}
	}
	return result
}
