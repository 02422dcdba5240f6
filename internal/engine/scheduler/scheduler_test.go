package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/engine/scheduler"
)

func newTask(id string, dependsOn, produces []string) domain.TaskRecord {
	return domain.TaskRecord{ID: domain.NewID(id), DependsOn: dependsOn, Produces: produces}
}

// diamondGraph builds A->B, A->C, B->D, C->D (D has no deps, A depends on
// both B and C through their produced artifacts).
func diamondGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	require.NoError(t, g.AddTask(newTask("D", nil, []string{"d.out"})))
	require.NoError(t, g.AddTask(newTask("B", []string{"d.out"}, []string{"b.out"})))
	require.NoError(t, g.AddTask(newTask("C", []string{"d.out"}, []string{"c.out"})))
	require.NoError(t, g.AddTask(newTask("A", []string{"b.out", "c.out"}, nil)))
	require.NoError(t, g.Validate())
	return g
}

func unfinishedSet(ids ...string) map[domain.ID]struct{} {
	set := make(map[domain.ID]struct{}, len(ids))
	for _, id := range ids {
		set[domain.NewID(id)] = struct{}{}
	}
	return set
}

func TestNewOnlyStartsSourceTasksReady(t *testing.T) {
	g := diamondGraph(t)
	s := scheduler.New(g, unfinishedSet("A", "B", "C", "D"), false)

	require.True(t, s.HasWork())
	proposed := s.Propose(-1)
	assert.ElementsMatch(t, []domain.ID{domain.NewID("D")}, proposed)
}

func TestCompletePromotesDependentsWhenAllUpstreamDone(t *testing.T) {
	g := diamondGraph(t)
	s := scheduler.New(g, unfinishedSet("A", "B", "C", "D"), false)

	d := s.Propose(-1)
	require.ElementsMatch(t, []domain.ID{domain.NewID("D")}, d)
	s.Complete(d)

	next := s.Propose(-1)
	assert.ElementsMatch(t, []domain.ID{domain.NewID("B"), domain.NewID("C")}, next)

	// A must not be ready until both B and C complete.
	more := s.Propose(-1)
	assert.Empty(t, more)

	s.Complete([]domain.ID{domain.NewID("B")})
	assert.Empty(t, s.Propose(-1))

	s.Complete([]domain.ID{domain.NewID("C")})
	assert.ElementsMatch(t, []domain.ID{domain.NewID("A")}, s.Propose(-1))
}

func TestHasWorkFalseOnceEverythingCompletes(t *testing.T) {
	g := diamondGraph(t)
	s := scheduler.New(g, unfinishedSet("A", "B", "C", "D"), false)

	for s.HasWork() {
		ready := s.Propose(-1)
		if len(ready) == 0 {
			break
		}
		s.Complete(ready)
	}
	assert.False(t, s.HasWork())
}

func TestProposeRespectsConcurrencyLimit(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddTask(newTask("A", nil, nil)))
	require.NoError(t, g.AddTask(newTask("B", nil, nil)))
	require.NoError(t, g.AddTask(newTask("C", nil, nil)))
	require.NoError(t, g.Validate())

	s := scheduler.New(g, unfinishedSet("A", "B", "C"), false)
	first := s.Propose(2)
	assert.Len(t, first, 2)

	second := s.Propose(-1)
	assert.Len(t, second, 1)
}

func TestProposeOrdersByDescendingEffectivePriorityWhenEnabled(t *testing.T) {
	g := domain.NewGraph()
	low := newTask("low", nil, nil)
	low.Priority = 1
	high := newTask("high", nil, nil)
	high.Priority = 10
	require.NoError(t, g.AddTask(low))
	require.NoError(t, g.AddTask(high))
	require.NoError(t, g.Validate())
	g.PropagatePriority(0)

	s := scheduler.New(g, unfinishedSet("low", "high"), true)
	proposed := s.Propose(-1)
	require.Len(t, proposed, 2)
	assert.Equal(t, domain.NewID("high"), proposed[0])
	assert.Equal(t, domain.NewID("low"), proposed[1])
}

func TestProposeIsIDSortedWhenPriorityDisabled(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddTask(newTask("zebra", nil, nil)))
	require.NoError(t, g.AddTask(newTask("alpha", nil, nil)))
	require.NoError(t, g.Validate())

	s := scheduler.New(g, unfinishedSet("zebra", "alpha"), false)
	proposed := s.Propose(-1)
	require.Len(t, proposed, 2)
	assert.Equal(t, domain.NewID("alpha"), proposed[0])
	assert.Equal(t, domain.NewID("zebra"), proposed[1])
}
