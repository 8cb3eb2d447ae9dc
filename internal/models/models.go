// Package models defines the core domain types for focus.
package models

import "time"

// TaskStatus represents the GTD workflow state of a task.
type TaskStatus string

const (
	TaskStatusInbox      TaskStatus = "inbox"
	TaskStatusNextAction TaskStatus = "next_action"
	TaskStatusWaiting    TaskStatus = "waiting"
	TaskStatusSomeday    TaskStatus = "someday"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every status in workflow order.
var TaskStatuses = []TaskStatus{
	TaskStatusInbox,
	TaskStatusNextAction,
	TaskStatusWaiting,
	TaskStatusSomeday,
	TaskStatusCompleted,
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusInbox, TaskStatusNextAction, TaskStatusWaiting, TaskStatusSomeday, TaskStatusCompleted:
		return true
	}
	return false
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority from most to least important.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a single actionable item. Empty Project/Context mean "not set".
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Notes       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Project     string     `json:"project,omitempty" yaml:"project,omitempty"`
	Context     string     `json:"context,omitempty" yaml:"context,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	DeferAt     *time.Time `json:"defer_at,omitempty" yaml:"defer_at,omitempty"`
	Flagged     bool       `json:"flagged" yaml:"flagged"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Field identifies the task attribute a filter condition inspects.
type Field string

const (
	FieldStatus   Field = "status"
	FieldPriority Field = "priority"
	FieldProject  Field = "project"
	FieldContext  Field = "context"
	FieldTag      Field = "tag"
	FieldDue      Field = "due"
	FieldDefer    Field = "defer"
	FieldFlagged  Field = "flagged"
	FieldTitle    Field = "title"
	FieldNotes    Field = "notes"
)

// Operator is the comparison a filter condition applies.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpHasTag      Operator = "has_tag"
	OpLacksTag    Operator = "lacks_tag"
	OpBefore      Operator = "before"
	OpAfter       Operator = "after"
	OpOn          Operator = "on"
	OpToday       Operator = "today"
	OpWithinDays  Operator = "within_days"
	OpOverdue     Operator = "overdue"
	OpIsSet       Operator = "is_set"
	OpIsNotSet    Operator = "is_not_set"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
)

// FilterCondition is a single (field, operator, operand) rule.
// Value holds string, enum, boolean and YYYY-MM-DD operands; Days holds
// the window for within_days.
type FilterCondition struct {
	Field    Field    `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Days     int      `json:"days,omitempty" yaml:"days,omitempty"`
}

// Logic is how the conditions of a FilterSet combine.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// FilterSet is an ordered list of conditions plus a combination mode.
type FilterSet struct {
	Conditions []FilterCondition `json:"conditions" yaml:"conditions"`
	Logic      Logic             `json:"logic" yaml:"logic"`
}

// SortField is the primary key tasks are ordered by.
type SortField string

const (
	SortTitle    SortField = "title"
	SortDue      SortField = "due"
	SortPriority SortField = "priority"
	SortCreated  SortField = "created"
	SortModified SortField = "modified"
	SortProject  SortField = "project"
	SortContext  SortField = "context"
)

// Direction is the order of the primary sort key.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey pairs a sort field with a direction.
type SortKey struct {
	Field     SortField `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// GroupKey selects how ordered tasks are bucketed.
type GroupKey string

const (
	GroupNone     GroupKey = "none"
	GroupStatus   GroupKey = "status"
	GroupPriority GroupKey = "priority"
	GroupProject  GroupKey = "project"
	GroupContext  GroupKey = "context"
	GroupDue      GroupKey = "due"
)

// Predicate tags the fixed filter of a built-in perspective.
type Predicate string

const (
	PredicateInbox     Predicate = "inbox"
	PredicateToday     Predicate = "today"
	PredicateUpcoming  Predicate = "upcoming"
	PredicateFlagged   Predicate = "flagged"
	PredicateNext      Predicate = "next"
	PredicateWaiting   Predicate = "waiting"
	PredicateSomeday   Predicate = "someday"
	PredicateCompleted Predicate = "completed"
	PredicateAll       Predicate = "all"
)

// Perspective is a saved filter+sort+group configuration.
// Built-in perspectives carry a Predicate instead of a Filter.
type Perspective struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Icon          string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color         string    `json:"color,omitempty" yaml:"color,omitempty"`
	Filter        FilterSet `json:"filter" yaml:"filter"`
	Predicate     Predicate `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Sort          SortKey   `json:"sort" yaml:"sort"`
	Group         GroupKey  `json:"group" yaml:"group"`
	ShowCompleted bool      `json:"show_completed" yaml:"show_completed"`
	ShowDeferred  bool      `json:"show_deferred" yaml:"show_deferred"`
	IsBuiltIn     bool      `json:"is_built_in" yaml:"is_built_in"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// BoardKind is the single dimension a board filters on.
type BoardKind string

const (
	BoardContext BoardKind = "context"
	BoardProject BoardKind = "project"
	BoardTag     BoardKind = "tag"
)

// Board is a single-dimension view used for the canvas layout.
type Board struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Kind      BoardKind `json:"kind" yaml:"kind"`
	Value     string    `json:"value" yaml:"value"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Change is a journal record of a state-mutating action.
type Change struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	EntityID   string    `json:"entity_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
