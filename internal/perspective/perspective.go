package perspective

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/models"
)

// BuiltInPrefix marks the ids of built-in perspectives.
const BuiltInPrefix = "builtin:"

// BuiltIns returns the built-in perspectives. Each call returns fresh
// values, so callers cannot mutate the definitions seen by others.
func BuiltIns() []models.Perspective {
	byDue := models.SortKey{Field: models.SortDue, Direction: models.Ascending}
	byPriority := models.SortKey{Field: models.SortPriority, Direction: models.Ascending}
	byCreated := models.SortKey{Field: models.SortCreated, Direction: models.Ascending}

	return []models.Perspective{
		builtIn(models.PredicateInbox, "Inbox", "tray", byCreated, models.GroupNone),
		builtIn(models.PredicateToday, "Today", "star", byPriority, models.GroupDue),
		builtIn(models.PredicateUpcoming, "Upcoming", "calendar", byDue, models.GroupDue),
		builtIn(models.PredicateFlagged, "Flagged", "flag", byDue, models.GroupProject),
		builtIn(models.PredicateNext, "Next Actions", "arrow", byPriority, models.GroupContext),
		builtIn(models.PredicateWaiting, "Waiting For", "hourglass", byCreated, models.GroupNone),
		builtIn(models.PredicateSomeday, "Someday", "cloud", byCreated, models.GroupProject),
		withCompleted(builtIn(models.PredicateCompleted, "Completed", "check",
			models.SortKey{Field: models.SortModified, Direction: models.Descending}, models.GroupNone)),
		builtIn(models.PredicateAll, "All Tasks", "list", byDue, models.GroupStatus),
	}
}

func builtIn(pred models.Predicate, name, icon string, sort models.SortKey, group models.GroupKey) models.Perspective {
	return models.Perspective{
		ID:        BuiltInPrefix + string(pred),
		Name:      name,
		Icon:      icon,
		Filter:    models.FilterSet{Logic: models.LogicAnd},
		Predicate: pred,
		Sort:      sort,
		Group:     group,
		IsBuiltIn: true,
	}
}

func withCompleted(p models.Perspective) models.Perspective {
	p.ShowCompleted = true
	return p
}

// BuiltIn looks up a built-in perspective by id or predicate name.
func BuiltIn(id string) (models.Perspective, bool) {
	name := strings.TrimPrefix(id, BuiltInPrefix)
	for _, p := range BuiltIns() {
		if string(p.Predicate) == name {
			return p, true
		}
	}
	return models.Perspective{}, false
}

// IsBuiltInID reports whether id names a built-in perspective.
func IsBuiltInID(id string) bool {
	return strings.HasPrefix(id, BuiltInPrefix)
}

func predicateMatches(pred models.Predicate, t models.Task, now time.Time) bool {
	switch pred {
	case models.PredicateInbox:
		return t.Status == models.TaskStatusInbox
	case models.PredicateToday:
		return t.DueAt != nil && !dayOf(*t.DueAt, now).After(startOfDay(now))
	case models.PredicateUpcoming:
		return t.DueAt != nil && dayOf(*t.DueAt, now).After(startOfDay(now))
	case models.PredicateFlagged:
		return t.Flagged
	case models.PredicateNext:
		return t.Status == models.TaskStatusNextAction
	case models.PredicateWaiting:
		return t.Status == models.TaskStatusWaiting
	case models.PredicateSomeday:
		return t.Status == models.TaskStatusSomeday
	case models.PredicateCompleted:
		return t.Status == models.TaskStatusCompleted
	case models.PredicateAll:
		return true
	}
	return false
}

// candidate reports whether t passes the perspective's own filter, before
// visibility toggles.
func candidate(p models.Perspective, t models.Task, now time.Time) bool {
	if p.IsBuiltIn {
		return predicateMatches(p.Predicate, t, now)
	}
	return Matches(p.Filter, t, now)
}

// Visible reports whether t survives the filter and visibility toggles of p.
func Visible(p models.Perspective, t models.Task, now time.Time) bool {
	if !candidate(p, t, now) {
		return false
	}
	if !p.ShowCompleted && t.Status == models.TaskStatusCompleted {
		return false
	}
	if !p.ShowDeferred && t.DeferAt != nil && t.DeferAt.After(now) {
		return false
	}
	return true
}

// Apply filters tasks through p and returns them in p's sort order.
// The result is a new slice; tasks is not modified.
func Apply(p models.Perspective, tasks []models.Task, now time.Time) []models.Task {
	kept := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Visible(p, t, now) {
			kept = append(kept, t)
		}
	}
	return Sort(kept, p.Sort)
}

// GroupView applies p and buckets the result by p's group key.
func GroupView(p models.Perspective, tasks []models.Task, now time.Time) []Group {
	return GroupTasks(Apply(p, tasks, now), p.Group, now)
}

// Search keeps the tasks whose title or notes contain query, case
// insensitively, preserving order. A blank query keeps everything.
func Search(tasks []models.Task, query string) []models.Task {
	query = strings.TrimSpace(query)
	if query == "" {
		return tasks
	}
	title := models.FilterCondition{Field: models.FieldTitle, Operator: models.OpContains, Value: query}
	notes := models.FilterCondition{Field: models.FieldNotes, Operator: models.OpContains, Value: query}
	set := models.FilterSet{Conditions: []models.FilterCondition{title, notes}, Logic: models.LogicOr}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(set, t, time.Time{}) {
			out = append(out, t)
		}
	}
	return out
}

// ErrInvalidPerspective is returned by Validate.
var ErrInvalidPerspective = errors.New("invalid perspective")

// Validate checks a user-authored perspective before it is saved. The
// engine tolerates everything Validate rejects; this exists so editing
// flows can refuse bad definitions up front.
func Validate(p models.Perspective) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPerspective)
	}
	if p.Filter.Logic != models.LogicAnd && p.Filter.Logic != models.LogicOr {
		return fmt.Errorf("%w: logic %q must be and or or", ErrInvalidPerspective, p.Filter.Logic)
	}
	for i, cond := range p.Filter.Conditions {
		if err := validateCondition(cond); err != nil {
			return fmt.Errorf("%w: condition %d: %v", ErrInvalidPerspective, i+1, err)
		}
	}
	switch p.Sort.Field {
	case models.SortTitle, models.SortDue, models.SortPriority, models.SortCreated,
		models.SortModified, models.SortProject, models.SortContext:
	default:
		return fmt.Errorf("%w: unknown sort field %q", ErrInvalidPerspective, p.Sort.Field)
	}
	if p.Sort.Direction != models.Ascending && p.Sort.Direction != models.Descending {
		return fmt.Errorf("%w: unknown sort direction %q", ErrInvalidPerspective, p.Sort.Direction)
	}
	switch p.Group {
	case models.GroupNone, models.GroupStatus, models.GroupPriority,
		models.GroupProject, models.GroupContext, models.GroupDue:
	default:
		return fmt.Errorf("%w: unknown group key %q", ErrInvalidPerspective, p.Group)
	}
	return nil
}

func validateCondition(cond models.FilterCondition) error {
	if !IsValidPair(cond.Field, cond.Operator) {
		return fmt.Errorf("operator %q does not apply to field %q", cond.Operator, cond.Field)
	}
	value := strings.TrimSpace(cond.Value)
	switch cond.Operator {
	case models.OpIsSet, models.OpIsNotSet, models.OpToday, models.OpOverdue:
		return nil
	case models.OpWithinDays:
		if cond.Days < 0 {
			return fmt.Errorf("days must not be negative")
		}
		return nil
	case models.OpBefore, models.OpAfter, models.OpOn:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("date %q must be YYYY-MM-DD", cond.Value)
		}
		return nil
	}

	switch cond.Field {
	case models.FieldStatus:
		if !models.TaskStatus(strings.ToLower(value)).Valid() {
			return fmt.Errorf("unknown status %q", cond.Value)
		}
	case models.FieldPriority:
		if !models.Priority(strings.ToLower(value)).Valid() {
			return fmt.Errorf("unknown priority %q", cond.Value)
		}
	case models.FieldFlagged:
		if value != "true" && value != "false" {
			return fmt.Errorf("flagged takes true or false")
		}
	default:
		if value == "" {
			return fmt.Errorf("value is required")
		}
	}
	return nil
}
