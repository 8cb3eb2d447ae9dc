package perspective

import (
	"testing"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(field models.SortField, dir models.Direction) models.SortKey {
	return models.SortKey{Field: field, Direction: dir}
}

func TestSort_Title(t *testing.T) {
	tasks := []models.Task{
		newTask("1", title("banana")),
		newTask("2", title("Apple")),
		newTask("3", title("cherry")),
	}

	assert.Equal(t, []string{"2", "1", "3"}, ids(Sort(tasks, key(models.SortTitle, models.Ascending))))
	assert.Equal(t, []string{"3", "1", "2"}, ids(Sort(tasks, key(models.SortTitle, models.Descending))))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	tasks := []models.Task{newTask("b", title("b")), newTask("a", title("a"))}
	_ = Sort(tasks, key(models.SortTitle, models.Ascending))
	assert.Equal(t, []string{"b", "a"}, ids(tasks))
}

func TestSort_DueUndatedAlwaysLast(t *testing.T) {
	tasks := []models.Task{
		newTask("none-1"),
		newTask("late", dueIn(5)),
		newTask("none-2", created(epoch.Add(time.Hour))),
		newTask("soon", dueIn(1)),
	}

	asc := ids(Sort(tasks, key(models.SortDue, models.Ascending)))
	desc := ids(Sort(tasks, key(models.SortDue, models.Descending)))

	assert.Equal(t, []string{"soon", "late", "none-1", "none-2"}, asc)
	assert.Equal(t, []string{"late", "soon", "none-1", "none-2"}, desc)
}

func TestSort_PriorityAscendingIsMostImportantFirst(t *testing.T) {
	tasks := []models.Task{
		newTask("low", priority(models.PriorityLow)),
		newTask("odd", priority(models.Priority("urgent"))),
		newTask("high", priority(models.PriorityHigh)),
		newTask("medium", priority(models.PriorityMedium)),
	}

	assert.Equal(t, []string{"high", "medium", "low", "odd"}, ids(Sort(tasks, key(models.SortPriority, models.Ascending))))
	assert.Equal(t, []string{"low", "medium", "high", "odd"}, ids(Sort(tasks, key(models.SortPriority, models.Descending))))
}

func TestSort_ProjectMissingLast(t *testing.T) {
	tasks := []models.Task{
		newTask("none"),
		newTask("beta", inProject("beta")),
		newTask("alpha", inProject("Alpha")),
	}

	assert.Equal(t, []string{"alpha", "beta", "none"}, ids(Sort(tasks, key(models.SortProject, models.Ascending))))
	assert.Equal(t, []string{"beta", "alpha", "none"}, ids(Sort(tasks, key(models.SortProject, models.Descending))))
}

func TestSort_BlankProjectAgreesWithGrouping(t *testing.T) {
	tasks := []models.Task{
		newTask("none"),
		newTask("blank", inProject("   ")),
		newTask("beta", inProject("beta")),
		newTask("alpha", inProject("Alpha")),
	}

	sorted := Sort(tasks, key(models.SortProject, models.Ascending))
	assert.Equal(t, []string{"alpha", "beta", "blank", "none"}, ids(sorted))

	groups := GroupTasks(sorted, models.GroupProject, refNow)
	require.Len(t, groups, 3)
	assert.Equal(t, LabelNoProject, groups[2].Label)
	assert.Equal(t, []string{"blank", "none"}, ids(groups[2].Tasks))
}

func TestSort_ContextMissingLast(t *testing.T) {
	tasks := []models.Task{
		newTask("none"),
		newTask("work", inContext("@work")),
		newTask("home", inContext("@home")),
	}

	assert.Equal(t, []string{"home", "work", "none"}, ids(Sort(tasks, key(models.SortContext, models.Ascending))))
}

func TestSort_CreatedAndModified(t *testing.T) {
	tasks := []models.Task{
		newTask("mid", created(epoch.Add(2*time.Hour)), modified(epoch.Add(1*time.Hour))),
		newTask("old", created(epoch.Add(1*time.Hour)), modified(epoch.Add(3*time.Hour))),
		newTask("new", created(epoch.Add(3*time.Hour)), modified(epoch.Add(2*time.Hour))),
	}

	assert.Equal(t, []string{"old", "mid", "new"}, ids(Sort(tasks, key(models.SortCreated, models.Ascending))))
	assert.Equal(t, []string{"new", "mid", "old"}, ids(Sort(tasks, key(models.SortCreated, models.Descending))))
	assert.Equal(t, []string{"old", "new", "mid"}, ids(Sort(tasks, key(models.SortModified, models.Descending))))
}

func TestSort_TieBreakIgnoresDirection(t *testing.T) {
	tasks := []models.Task{
		newTask("c", title("same"), created(epoch.Add(2*time.Hour))),
		newTask("b", title("same"), created(epoch.Add(1*time.Hour))),
		newTask("a", title("same"), created(epoch.Add(2*time.Hour))),
	}

	want := []string{"b", "a", "c"}
	assert.Equal(t, want, ids(Sort(tasks, key(models.SortTitle, models.Ascending))))
	assert.Equal(t, want, ids(Sort(tasks, key(models.SortTitle, models.Descending))))
}

func TestSort_UnknownKeyUsesTieBreakOnly(t *testing.T) {
	tasks := []models.Task{
		newTask("z", title("a"), created(epoch.Add(time.Hour))),
		newTask("y", title("b")),
		newTask("x", title("c")),
	}

	got := Sort(tasks, key(models.SortField("colour"), models.Ascending))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))
}
