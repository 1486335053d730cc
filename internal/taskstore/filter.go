package taskstore

import (
	"fmt"
	"strings"

	"github.com/TWRT/taskboard/internal/models"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterCompleted, FilterPending:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, completed or pending)", s)
}

// Match reports whether t belongs in the view selected by f. Unknown filters
// behave like FilterAll.
func (f Filter) Match(t models.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

// Apply returns the tasks matching f, preserving order. A nil input yields an
// empty, non-nil slice.
func Apply(f Filter, tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

type Counts struct {
	Total     int
	Completed int
	Pending   int
}

func Count(tasks []models.Task) Counts {
	var c Counts
	for _, t := range tasks {
		c.Total++
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}
