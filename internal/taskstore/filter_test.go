package taskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWRT/taskboard/internal/models"
)

func TestApply(t *testing.T) {
	tasks := []models.Task{task("a", false), task("b", true), task("c", false)}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Apply(FilterAll, tasks)))
	assert.Equal(t, []string{"b"}, ids(Apply(FilterCompleted, tasks)))
	assert.Equal(t, []string{"a", "c"}, ids(Apply(FilterPending, tasks)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Apply(Filter("bogus"), tasks)))
}

func TestApply_NilList(t *testing.T) {
	out := Apply(FilterPending, nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, Counts{}, Count(nil))
}

func TestCount(t *testing.T) {
	tasks := []models.Task{
		{Id: "a", Order: 0, Completed: false},
		{Id: "b", Order: 1, Completed: true},
	}
	assert.Equal(t, Counts{Total: 2, Completed: 1, Pending: 1}, Count(tasks))
	assert.Equal(t, []string{"a"}, ids(Apply(FilterPending, tasks)))
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{
		"":           FilterAll,
		"all":        FilterAll,
		" Completed": FilterCompleted,
		"PENDING":    FilterPending,
	} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFilter("done")
	assert.Error(t, err)
}
