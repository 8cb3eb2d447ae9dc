package perspective

import (
	"time"

	"github.com/fentz26/focus/internal/models"
)

// refNow is Wednesday 2024-05-15 10:00 UTC.
var refNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type taskOpt func(*models.Task)

func newTask(id string, opts ...taskOpt) models.Task {
	t := models.Task{
		ID:        id,
		Title:     id,
		Status:    models.TaskStatusInbox,
		Priority:  models.PriorityMedium,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func title(s string) taskOpt { return func(t *models.Task) { t.Title = s } }
func notes(s string) taskOpt { return func(t *models.Task) { t.Notes = s } }
func status(s models.TaskStatus) taskOpt { return func(t *models.Task) { t.Status = s } }
func priority(p models.Priority) taskOpt { return func(t *models.Task) { t.Priority = p } }
func inProject(s string) taskOpt { return func(t *models.Task) { t.Project = s } }
func inContext(s string) taskOpt { return func(t *models.Task) { t.Context = s } }
func tags(s ...string) taskOpt { return func(t *models.Task) { t.Tags = s } }
func flagged() taskOpt { return func(t *models.Task) { t.Flagged = true } }
func created(at time.Time) taskOpt { return func(t *models.Task) { t.CreatedAt = at } }
func modified(at time.Time) taskOpt { return func(t *models.Task) { t.UpdatedAt = at } }
func dueIn(days int) taskOpt { return func(t *models.Task) { d := refNow.AddDate(0, 0, days); t.DueAt = &d } }
func deferBy(d time.Duration) taskOpt { return func(t *models.Task) { at := refNow.Add(d); t.DeferAt = &at } }

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func and(conds ...models.FilterCondition) models.FilterSet {
	return models.FilterSet{Conditions: conds, Logic: models.LogicAnd}
}

func or(conds ...models.FilterCondition) models.FilterSet {
	return models.FilterSet{Conditions: conds, Logic: models.LogicOr}
}

func cond(field models.Field, op models.Operator, value string) models.FilterCondition {
	return models.FilterCondition{Field: field, Operator: op, Value: value}
}

func smart(filter models.FilterSet, sort models.SortKey, group models.GroupKey) models.Perspective {
	return models.Perspective{
		ID:     "p1",
		Name:   "Smart",
		Filter: filter,
		Sort:   sort,
		Group:  group,
	}
}
