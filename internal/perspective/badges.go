package perspective

import (
	"time"

	"github.com/fentz26/focus/internal/models"
)

// Counts returns the number of visible tasks for every perspective and
// board, keyed by id. Every call recomputes from the snapshot; no counters
// survive between calls.
func Counts(tasks []models.Task, perspectives []models.Perspective, boards []models.Board, now time.Time) map[string]int {
	counts := make(map[string]int, len(perspectives)+len(boards))
	for _, p := range perspectives {
		counts[p.ID] = count(p, tasks, now)
	}
	for _, b := range boards {
		counts[b.ID] = count(BoardPerspective(b), tasks, now)
	}
	return counts
}

// count is Apply without the sort, since only the cardinality is kept.
func count(p models.Perspective, tasks []models.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if Visible(p, t, now) {
			n++
		}
	}
	return n
}
