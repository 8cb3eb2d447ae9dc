package perspective

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/models"
)

// Bucket labels shared by every surface.
const (
	LabelAllTasks  = "All Tasks"
	LabelOther     = "Other"
	LabelNoProject = "No Project"
	LabelNoContext = "No Context"
	LabelOverdue   = "Overdue"
	LabelToday     = "Today"
	LabelThisWeek  = "This Week"
	LabelLater     = "Later"
	LabelNoDate    = "No Date"
)

// Group is one labelled bucket of tasks. Key is stable across renames of
// the label and is safe to use for UI diffing.
type Group struct {
	Key   string        `json:"key"`
	Label string        `json:"label"`
	Tasks []models.Task `json:"tasks"`
}

var statusLabels = map[models.TaskStatus]string{
	models.TaskStatusInbox:      "Inbox",
	models.TaskStatusNextAction: "Next Action",
	models.TaskStatusWaiting:    "Waiting",
	models.TaskStatusSomeday:    "Someday",
	models.TaskStatusCompleted:  "Completed",
}

var priorityLabels = map[models.Priority]string{
	models.PriorityHigh:   "High",
	models.PriorityMedium: "Medium",
	models.PriorityLow:    "Low",
}

// StatusLabel returns the display label for a status.
func StatusLabel(s models.TaskStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// GroupTasks partitions already-ordered tasks into buckets. Relative order
// inside a bucket is the input order. Empty buckets are never returned.
func GroupTasks(ordered []models.Task, key models.GroupKey, now time.Time) []Group {
	if len(ordered) == 0 {
		return []Group{}
	}

	switch key {
	case models.GroupStatus:
		return groupByStatus(ordered)
	case models.GroupPriority:
		return groupByPriority(ordered)
	case models.GroupProject:
		return groupByName(ordered, "project", LabelNoProject, func(t models.Task) string { return t.Project })
	case models.GroupContext:
		return groupByName(ordered, "context", LabelNoContext, func(t models.Task) string { return t.Context })
	case models.GroupDue:
		return groupByDue(ordered, now)
	}

	all := make([]models.Task, len(ordered))
	copy(all, ordered)
	return []Group{{Key: "all", Label: LabelAllTasks, Tasks: all}}
}

// bucketer collects tasks under keys and emits them in a caller-chosen order.
type bucketer struct {
	labels  map[string]string
	members map[string][]models.Task
}

func newBucketer() *bucketer {
	return &bucketer{
		labels:  make(map[string]string),
		members: make(map[string][]models.Task),
	}
}

func (b *bucketer) add(key, label string, task models.Task) {
	b.labels[key] = label
	b.members[key] = append(b.members[key], task)
}

func (b *bucketer) emit(order []string) []Group {
	groups := make([]Group, 0, len(order))
	for _, key := range order {
		tasks := b.members[key]
		if len(tasks) == 0 {
			continue
		}
		groups = append(groups, Group{Key: key, Label: b.labels[key], Tasks: tasks})
	}
	return groups
}

func groupByStatus(ordered []models.Task) []Group {
	b := newBucketer()
	for _, t := range ordered {
		if t.Status.Valid() {
			b.add("status:"+string(t.Status), statusLabels[t.Status], t)
		} else {
			b.add("status:other", LabelOther, t)
		}
	}

	order := make([]string, 0, len(models.TaskStatuses)+1)
	for _, s := range models.TaskStatuses {
		order = append(order, "status:"+string(s))
	}
	return b.emit(append(order, "status:other"))
}

func groupByPriority(ordered []models.Task) []Group {
	b := newBucketer()
	for _, t := range ordered {
		if t.Priority.Valid() {
			b.add("priority:"+string(t.Priority), priorityLabels[t.Priority], t)
		} else {
			b.add("priority:other", LabelOther, t)
		}
	}

	order := make([]string, 0, len(models.Priorities)+1)
	for _, p := range models.Priorities {
		order = append(order, "priority:"+string(p))
	}
	return b.emit(append(order, "priority:other"))
}

// groupByName buckets by a free-text attribute. Values that differ only in
// case share a bucket labelled by the first spelling seen.
func groupByName(ordered []models.Task, prefix, missingLabel string, value func(models.Task) string) []Group {
	b := newBucketer()
	missingKey := prefix + ":"
	var names []string
	for _, t := range ordered {
		name := strings.TrimSpace(value(t))
		if name == "" {
			b.add(missingKey, missingLabel, t)
			continue
		}
		key := prefix + ":" + strings.ToLower(name)
		if _, seen := b.labels[key]; !seen {
			names = append(names, key)
			b.add(key, name, t)
			continue
		}
		b.add(key, b.labels[key], t)
	}

	slices.SortFunc(names, func(x, y string) int {
		return cmp.Compare(x, y)
	})
	return b.emit(append(names, missingKey))
}

var dueBuckets = []struct {
	key   string
	label string
}{
	{"due:overdue", LabelOverdue},
	{"due:today", LabelToday},
	{"due:week", LabelThisWeek},
	{"due:later", LabelLater},
	{"due:none", LabelNoDate},
}

// DueBucket returns the key and label of the due-date bucket a task falls in.
func DueBucket(t models.Task, now time.Time) (string, string) {
	idx := dueBucketIndex(t, now)
	return dueBuckets[idx].key, dueBuckets[idx].label
}

func dueBucketIndex(t models.Task, now time.Time) int {
	if t.DueAt == nil {
		return 4
	}
	day := dayOf(*t.DueAt, now)
	today := startOfDay(now)
	switch {
	case day.Before(today):
		return 0
	case day.Equal(today):
		return 1
	case day.Before(today.AddDate(0, 0, 7)):
		return 2
	}
	return 3
}

func groupByDue(ordered []models.Task, now time.Time) []Group {
	b := newBucketer()
	for _, t := range ordered {
		key, label := DueBucket(t, now)
		b.add(key, label, t)
	}

	order := make([]string, len(dueBuckets))
	for i, bucket := range dueBuckets {
		order[i] = bucket.key
	}
	return b.emit(order)
}
