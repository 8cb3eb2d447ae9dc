// Package perspective derives ordered, grouped task views from a task
// snapshot. Every function here is pure: it reads its arguments, never the
// clock or any shared state, and never fails.
package perspective

import (
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/models"
)

const dateLayout = "2006-01-02"

// validOperators is the closed (field -> operators) table. Pairs missing
// from it evaluate to false.
var validOperators = map[models.Field][]models.Operator{
	models.FieldStatus:   {models.OpEquals, models.OpNotEquals},
	models.FieldPriority: {models.OpEquals, models.OpNotEquals},
	models.FieldProject:  {models.OpEquals, models.OpNotEquals, models.OpIsSet, models.OpIsNotSet},
	models.FieldContext:  {models.OpEquals, models.OpNotEquals, models.OpIsSet, models.OpIsNotSet},
	models.FieldTag:      {models.OpHasTag, models.OpLacksTag, models.OpIsSet, models.OpIsNotSet},
	models.FieldDue: {
		models.OpBefore, models.OpAfter, models.OpOn, models.OpToday,
		models.OpWithinDays, models.OpOverdue, models.OpIsSet, models.OpIsNotSet,
	},
	models.FieldDefer: {
		models.OpBefore, models.OpAfter, models.OpOn, models.OpToday,
		models.OpWithinDays, models.OpIsSet, models.OpIsNotSet,
	},
	models.FieldFlagged: {models.OpEquals, models.OpNotEquals},
	models.FieldTitle:   {models.OpContains, models.OpNotContains},
	models.FieldNotes:   {models.OpContains, models.OpNotContains},
}

// ValidOperators returns the operators applicable to field.
func ValidOperators(field models.Field) []models.Operator {
	ops := validOperators[field]
	out := make([]models.Operator, len(ops))
	copy(out, ops)
	return out
}

// IsValidPair reports whether op may be applied to field.
func IsValidPair(field models.Field, op models.Operator) bool {
	for _, candidate := range validOperators[field] {
		if candidate == op {
			return true
		}
	}
	return false
}

// Evaluate reports whether task satisfies cond at the reference time now.
// Invalid pairs and unparsable operands evaluate to false.
func Evaluate(cond models.FilterCondition, task models.Task, now time.Time) bool {
	if !IsValidPair(cond.Field, cond.Operator) {
		return false
	}

	switch cond.Field {
	case models.FieldStatus:
		want := models.TaskStatus(strings.ToLower(strings.TrimSpace(cond.Value)))
		if !want.Valid() {
			return false
		}
		return equality(cond.Operator, task.Status == want)

	case models.FieldPriority:
		want := models.Priority(strings.ToLower(strings.TrimSpace(cond.Value)))
		if !want.Valid() {
			return false
		}
		return equality(cond.Operator, task.Priority == want)

	case models.FieldProject:
		return evalOptionalString(cond, task.Project)

	case models.FieldContext:
		return evalOptionalString(cond, task.Context)

	case models.FieldTag:
		return evalTag(cond, task.Tags)

	case models.FieldDue:
		if cond.Operator == models.OpOverdue {
			if task.DueAt == nil || task.Status == models.TaskStatusCompleted {
				return false
			}
			return dayOf(*task.DueAt, now).Before(startOfDay(now))
		}
		return evalDate(cond, task.DueAt, now)

	case models.FieldDefer:
		return evalDate(cond, task.DeferAt, now)

	case models.FieldFlagged:
		want, err := strconv.ParseBool(strings.TrimSpace(cond.Value))
		if err != nil {
			return false
		}
		return equality(cond.Operator, task.Flagged == want)

	case models.FieldTitle:
		return evalText(cond, task.Title)

	case models.FieldNotes:
		return evalText(cond, task.Notes)
	}
	return false
}

// Matches reports whether task satisfies set. An empty AND set matches
// every task; an empty OR set matches none.
func Matches(set models.FilterSet, task models.Task, now time.Time) bool {
	switch set.Logic {
	case models.LogicAnd:
		for _, cond := range set.Conditions {
			if !Evaluate(cond, task, now) {
				return false
			}
		}
		return true
	case models.LogicOr:
		for _, cond := range set.Conditions {
			if Evaluate(cond, task, now) {
				return true
			}
		}
		return false
	}
	return false
}

func equality(op models.Operator, equal bool) bool {
	if op == models.OpNotEquals {
		return !equal
	}
	return equal
}

func evalOptionalString(cond models.FilterCondition, value string) bool {
	switch cond.Operator {
	case models.OpIsSet:
		return value != ""
	case models.OpIsNotSet:
		return value == ""
	case models.OpEquals:
		return value != "" && strings.EqualFold(value, strings.TrimSpace(cond.Value))
	case models.OpNotEquals:
		return value == "" || !strings.EqualFold(value, strings.TrimSpace(cond.Value))
	}
	return false
}

func evalTag(cond models.FilterCondition, tags []string) bool {
	switch cond.Operator {
	case models.OpIsSet:
		return len(tags) > 0
	case models.OpIsNotSet:
		return len(tags) == 0
	}

	// A blank operand is malformed and fails closed for both operators.
	want := strings.TrimSpace(cond.Value)
	if want == "" {
		return false
	}
	has := false
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			has = true
			break
		}
	}
	if cond.Operator == models.OpLacksTag {
		return !has
	}
	return has
}

func evalText(cond models.FilterCondition, text string) bool {
	needle := strings.ToLower(cond.Value)
	found := strings.Contains(strings.ToLower(text), needle)
	if cond.Operator == models.OpNotContains {
		return !found
	}
	return found
}

func evalDate(cond models.FilterCondition, at *time.Time, now time.Time) bool {
	switch cond.Operator {
	case models.OpIsSet:
		return at != nil
	case models.OpIsNotSet:
		return at == nil
	}
	if at == nil {
		return false
	}

	day := dayOf(*at, now)
	today := startOfDay(now)

	switch cond.Operator {
	case models.OpToday:
		return day.Equal(today)
	case models.OpWithinDays:
		if cond.Days < 0 {
			return false
		}
		return !day.Before(today) && !day.After(today.AddDate(0, 0, cond.Days))
	}

	operand, err := time.ParseInLocation(dateLayout, strings.TrimSpace(cond.Value), now.Location())
	if err != nil {
		return false
	}
	switch cond.Operator {
	case models.OpBefore:
		return day.Before(operand)
	case models.OpAfter:
		return day.After(operand)
	case models.OpOn:
		return day.Equal(operand)
	}
	return false
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayOf returns the calendar day of t as seen from ref's location.
func dayOf(t, ref time.Time) time.Time {
	return startOfDay(t.In(ref.Location()))
}
