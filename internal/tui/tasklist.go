package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
)

var (
	groupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondaryColor)

	flagStyle     = lipgloss.NewStyle().Foreground(warningColor)
	overdueStyle  = lipgloss.NewStyle().Foreground(errorColor)
	dueStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	doneStyle     = lipgloss.NewStyle().Foreground(successColor)
	priorityHigh  = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	priorityOther = lipgloss.NewStyle().Foreground(mutedColor)
)

// flattenGroups turns groups into display rows. A single "All Tasks"
// bucket is shown without a header.
func flattenGroups(groups []perspective.Group) []row {
	var rows []row
	headers := !(len(groups) == 1 && groups[0].Key == "all")
	for gi := range groups {
		g := &groups[gi]
		if headers {
			rows = append(rows, row{header: g.Label, count: len(g.Tasks)})
		}
		for ti := range g.Tasks {
			rows = append(rows, row{task: &g.Tasks[ti]})
		}
	}
	return rows
}

// firstTaskRow returns the index of the first task row, or -1.
func firstTaskRow(rows []row) int {
	return nextTaskRow(rows, -1, 1)
}

// nextTaskRow moves from idx by delta (±1) to the nearest task row. It
// returns idx unchanged when there is none in that direction.
func nextTaskRow(rows []row, idx, delta int) int {
	for i := idx + delta; i >= 0 && i < len(rows); i += delta {
		if rows[i].task != nil {
			return i
		}
	}
	return idx
}

// findTaskRow returns the row showing the task with id, or -1.
func findTaskRow(rows []row, id string) int {
	for i, r := range rows {
		if r.task != nil && r.task.ID == id {
			return i
		}
	}
	return -1
}

func taskCount(rows []row) int {
	n := 0
	for _, r := range rows {
		if r.task != nil {
			n++
		}
	}
	return n
}

func renderRows(rows []row, selected int, focused bool, width, height int, now time.Time) string {
	if len(rows) == 0 {
		return "\n  Nothing here.\n"
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		if r.task == nil {
			lines[i] = groupHeaderStyle.Render(fmt.Sprintf("%s (%d)", r.header, r.count))
			continue
		}
		line := formatTaskLine(*r.task, width-4, now)
		if i == selected && focused {
			lines[i] = selectedStyle.Render("▶ " + line)
		} else if i == selected {
			lines[i] = "▶ " + line
		} else {
			lines[i] = "  " + line
		}
	}

	// Keep the selection on screen
	if len(lines) > height {
		start := selected - height/2
		if start < 0 {
			start = 0
		}
		end := start + height
		if end > len(lines) {
			end = len(lines)
			start = max(0, end-height)
		}
		lines = lines[start:end]
	}

	return strings.Join(lines, "\n")
}

func formatTaskLine(t models.Task, width int, now time.Time) string {
	check := "○"
	if t.Status == models.TaskStatusCompleted {
		check = doneStyle.Render("✓")
	}

	prio := priorityOther.Render("·")
	if t.Priority == models.PriorityHigh {
		prio = priorityHigh.Render("!")
	}

	flag := " "
	if t.Flagged {
		flag = flagStyle.Render("⚑")
	}

	due := ""
	if t.DueAt != nil {
		key, label := perspective.DueBucket(t, now)
		text := t.DueAt.In(now.Location()).Format("Jan 2")
		if key == "due:overdue" {
			due = overdueStyle.Render(text + " " + label)
		} else {
			due = dueStyle.Render(text)
		}
	}

	title := t.Title
	if r := []rune(title); width-20 > 3 && len(r) > width-20 {
		title = string(r[:width-23]) + "..."
	}

	meta := make([]string, 0, 2)
	if t.Project != "" {
		meta = append(meta, t.Project)
	}
	if t.Context != "" {
		meta = append(meta, t.Context)
	}
	extra := ""
	if len(meta) > 0 {
		extra = " " + dueStyle.Render("["+strings.Join(meta, " ")+"]")
	}

	line := fmt.Sprintf("%s %s %s %s%s", check, prio, flag, title, extra)
	if due != "" {
		line += "  " + due
	}
	return line
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
