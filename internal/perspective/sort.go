package perspective

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/models"
)

// Sort returns a new slice ordered by key. Ties on the primary key fall back
// to creation time ascending, then id ascending, whatever the direction.
// Tasks missing the primary field (no due date, no project, no context,
// unknown priority) always come last. An unknown key yields the tie-break
// order alone.
func Sort(tasks []models.Task, key models.SortKey) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)

	desc := key.Direction == models.Descending
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if c := comparePrimary(a, b, key.Field, desc); c != 0 {
			return c
		}
		return tieBreak(a, b)
	})
	return out
}

func comparePrimary(a, b models.Task, field models.SortField, desc bool) int {
	switch field {
	case models.SortTitle:
		return directed(cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)), desc)
	case models.SortDue:
		return compareOptionalTime(a.DueAt, b.DueAt, desc)
	case models.SortPriority:
		ra, rb := priorityRank(a.Priority), priorityRank(b.Priority)
		if c, done := missingLast(ra < 0, rb < 0); done {
			return c
		}
		return directed(cmp.Compare(ra, rb), desc)
	case models.SortCreated:
		return directed(a.CreatedAt.Compare(b.CreatedAt), desc)
	case models.SortModified:
		return directed(a.UpdatedAt.Compare(b.UpdatedAt), desc)
	case models.SortProject:
		return compareOptionalString(a.Project, b.Project, desc)
	case models.SortContext:
		return compareOptionalString(a.Context, b.Context, desc)
	}
	return 0
}

func tieBreak(a, b models.Task) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// missingLast orders a present value before a missing one. done is false
// when both are present and the caller must compare values.
func missingLast(aMissing, bMissing bool) (int, bool) {
	switch {
	case aMissing && bMissing:
		return 0, true
	case aMissing:
		return 1, true
	case bMissing:
		return -1, true
	}
	return 0, false
}

func compareOptionalTime(a, b *time.Time, desc bool) int {
	if c, done := missingLast(a == nil, b == nil); done {
		return c
	}
	return directed(a.Compare(*b), desc)
}

func compareOptionalString(a, b string, desc bool) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if c, done := missingLast(a == "", b == ""); done {
		return c
	}
	return directed(cmp.Compare(strings.ToLower(a), strings.ToLower(b)), desc)
}

// priorityRank maps high/medium/low to 0/1/2 so ascending means most
// important first. Unknown priorities rank -1.
func priorityRank(p models.Priority) int {
	for i, candidate := range models.Priorities {
		if p == candidate {
			return i
		}
	}
	return -1
}
