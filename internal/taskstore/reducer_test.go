package taskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWRT/taskboard/internal/models"
)

func task(id string, completed bool) models.Task {
	return models.Task{Id: id, Title: "task " + id, Completed: completed, Priority: models.PriorityMedium}
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Id)
	}
	return out
}

func requireConsistent(t *testing.T, s State) {
	t.Helper()
	require.Equal(t, ids(Apply(s.Filter, s.Tasks)), ids(s.FilteredTasks), "filtered view is stale")
	require.Equal(t, Apply(s.Filter, s.Tasks), s.FilteredTasks)
}

func TestReduce_FilteredViewInvariant(t *testing.T) {
	seed := []models.Task{task("a", false), task("b", true), task("c", false)}

	actions := []struct {
		name   string
		action Action
	}{
		{"replace-all", ReplaceAll{Tasks: seed}},
		{"add pending", Add{Task: task("d", false)}},
		{"add completed", Add{Task: task("e", true)}},
		{"update flips completion", Update{Task: task("a", true)}},
		{"update unknown id", Update{Task: task("zz", true)}},
		{"delete", Delete{ID: "b"}},
		{"delete unknown id", Delete{ID: "zz"}},
		{"reorder", Reorder{Tasks: []models.Task{task("c", false), task("a", true), task("d", false), task("e", true)}}},
		{"set-loading", SetLoading{Loading: true}},
		{"set-error", SetError{Message: "boom"}},
	}

	for _, filter := range []Filter{FilterAll, FilterCompleted, FilterPending} {
		t.Run(string(filter), func(t *testing.T) {
			s := Reduce(InitialState(), SetFilter{Filter: filter})
			requireConsistent(t, s)
			for _, a := range actions {
				s = Reduce(s, a.action)
				t.Run(a.name, func(t *testing.T) {
					requireConsistent(t, s)
				})
			}
		})
	}
}

func TestReduce_ReplaceAll(t *testing.T) {
	s := Reduce(InitialState(), SetError{Message: "old"})
	s = Reduce(s, SetLoading{Loading: true})
	s = Reduce(s, ReplaceAll{Tasks: []models.Task{task("a", false)}})

	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Equal(t, []string{"a"}, ids(s.Tasks))
}

func TestReduce_AddPrepends(t *testing.T) {
	s := Reduce(InitialState(), ReplaceAll{Tasks: []models.Task{task("a", false), task("b", true)}})
	s = Reduce(s, SetFilter{Filter: FilterPending})

	s = Reduce(s, Add{Task: task("c", false)})
	assert.Equal(t, []string{"c", "a", "b"}, ids(s.Tasks))
	assert.Equal(t, []string{"c", "a"}, ids(s.FilteredTasks))

	s = Reduce(s, Add{Task: task("d", true)})
	assert.Equal(t, []string{"d", "c", "a", "b"}, ids(s.Tasks))
	assert.Equal(t, []string{"c", "a"}, ids(s.FilteredTasks))
}

func TestReduce_UpdateUnknownIDIsNoop(t *testing.T) {
	s := Reduce(InitialState(), ReplaceAll{Tasks: []models.Task{task("a", false)}})
	next := Reduce(s, Update{Task: task("ghost", true)})
	assert.Equal(t, s.Tasks, next.Tasks)
	assert.Equal(t, s.FilteredTasks, next.FilteredTasks)
}

func TestReduce_UpdateMovesTaskOutOfFilteredView(t *testing.T) {
	s := Reduce(InitialState(), ReplaceAll{Tasks: []models.Task{task("a", false), task("b", false)}})
	s = Reduce(s, SetFilter{Filter: FilterPending})
	s = Reduce(s, Update{Task: task("a", true)})

	assert.Equal(t, []string{"a", "b"}, ids(s.Tasks))
	assert.True(t, s.Tasks[0].Completed)
	assert.Equal(t, []string{"b"}, ids(s.FilteredTasks))
}

func TestReduce_SetFilterIsIdempotent(t *testing.T) {
	s := Reduce(InitialState(), ReplaceAll{Tasks: []models.Task{task("a", false), task("b", true)}})

	once := Reduce(s, SetFilter{Filter: FilterCompleted})
	twice := Reduce(once, SetFilter{Filter: FilterCompleted})
	assert.Equal(t, once.FilteredTasks, twice.FilteredTasks)
	assert.Equal(t, []string{"b"}, ids(twice.FilteredTasks))

	// Switching back recomputes from the canonical list, not the old view.
	back := Reduce(twice, SetFilter{Filter: FilterAll})
	assert.Equal(t, []string{"a", "b"}, ids(back.FilteredTasks))
}

func TestReduce_AddThenDeleteRoundTrip(t *testing.T) {
	s := Reduce(InitialState(), ReplaceAll{Tasks: []models.Task{task("a", false), task("b", true), task("c", false)}})
	before := s.Tasks

	s = Reduce(s, Add{Task: task("new", false)})
	s = Reduce(s, Delete{ID: "new"})

	assert.Equal(t, before, s.Tasks)
}

func TestReduce_DoesNotMutatePreviousState(t *testing.T) {
	s := Reduce(InitialState(), ReplaceAll{Tasks: []models.Task{task("a", false), task("b", false)}})
	snapshot := ids(s.Tasks)

	_ = Reduce(s, Update{Task: task("a", true)})
	_ = Reduce(s, Delete{ID: "a"})
	_ = Reduce(s, Reorder{Tasks: []models.Task{task("b", false), task("a", false)}})

	assert.Equal(t, snapshot, ids(s.Tasks))
	assert.False(t, s.Tasks[0].Completed)
}

func TestReduce_SetErrorStopsLoading(t *testing.T) {
	s := Reduce(InitialState(), SetLoading{Loading: true})
	s = Reduce(s, SetError{Message: "Failed to fetch tasks"})
	assert.False(t, s.Loading)
	assert.Equal(t, "Failed to fetch tasks", s.Error)
}

func TestStore_Reset(t *testing.T) {
	st := NewStore()
	st.Dispatch(ReplaceAll{Tasks: []models.Task{task("a", true)}})
	st.Dispatch(SetFilter{Filter: FilterCompleted})
	require.Len(t, st.State().FilteredTasks, 1)
	assert.Equal(t, Counts{Total: 1, Completed: 1}, st.Counts())

	st.Reset()
	assert.Equal(t, InitialState(), st.State())
}
