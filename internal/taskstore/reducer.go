// Package taskstore holds the client-side task list. State only changes by
// reducing Actions, and FilteredTasks is always Apply(Filter, Tasks).
package taskstore

import (
	"slices"

	"github.com/TWRT/taskboard/internal/models"
)

type State struct {
	Tasks         []models.Task
	FilteredTasks []models.Task
	Filter        Filter
	Loading       bool
	Error         string
}

func InitialState() State {
	return State{
		Tasks:         []models.Task{},
		FilteredTasks: []models.Task{},
		Filter:        FilterAll,
		Loading:       true,
	}
}

// Action is one of the types declared below; the set is closed.
type Action interface {
	isAction()
}

type (
	ReplaceAll struct{ Tasks []models.Task }
	Add        struct{ Task models.Task }
	Update     struct{ Task models.Task }
	Delete     struct{ ID string }
	Reorder    struct{ Tasks []models.Task }
	SetFilter  struct{ Filter Filter }
	SetLoading struct{ Loading bool }
	SetError   struct{ Message string }
)

func (ReplaceAll) isAction() {}
func (Add) isAction()        {}
func (Update) isAction()     {}
func (Delete) isAction()     {}
func (Reorder) isAction()    {}
func (SetFilter) isAction()  {}
func (SetLoading) isAction() {}
func (SetError) isAction()   {}

// Reduce returns the state after applying a. It never modifies s or the
// slices it references.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ReplaceAll:
		s.Tasks = clone(a.Tasks)
		s.Loading = false
		s.Error = ""
	case Add:
		s.Tasks = append([]models.Task{a.Task}, s.Tasks...)
	case Update:
		i := slices.IndexFunc(s.Tasks, func(t models.Task) bool { return t.Id == a.Task.Id })
		if i < 0 {
			return s
		}
		s.Tasks = clone(s.Tasks)
		s.Tasks[i] = a.Task
	case Delete:
		s.Tasks = slices.DeleteFunc(clone(s.Tasks), func(t models.Task) bool { return t.Id == a.ID })
	case Reorder:
		s.Tasks = clone(a.Tasks)
	case SetFilter:
		s.Filter = a.Filter
	case SetLoading:
		s.Loading = a.Loading
		return s
	case SetError:
		s.Error = a.Message
		s.Loading = false
		return s
	default:
		return s
	}
	s.FilteredTasks = Apply(s.Filter, s.Tasks)
	return s
}

func clone(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
