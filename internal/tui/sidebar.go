package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/focus/internal/models"
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	sidebarFocusedStyle = sidebarStyle.Copy().
				BorderForeground(primaryColor)

	sectionLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(cyanColor)
)

var icons = map[string]string{
	"tray":      "▣",
	"star":      "★",
	"calendar":  "▦",
	"flag":      "⚑",
	"arrow":     "→",
	"hourglass": "⧗",
	"cloud":     "☁",
	"check":     "✓",
	"list":      "≡",
}

// buildSidebar lists perspectives (built-ins first, as served) followed by
// boards.
func buildSidebar(perspectives []models.Perspective, boards []models.Board) []sidebarEntry {
	entries := make([]sidebarEntry, 0, len(perspectives)+len(boards))
	for _, p := range perspectives {
		entries = append(entries, sidebarEntry{ID: p.ID, Name: p.Name, Icon: p.Icon, Kind: entryPerspective})
	}
	for _, b := range boards {
		entries = append(entries, sidebarEntry{ID: b.ID, Name: b.Name, Icon: string(b.Kind), Kind: entryBoard})
	}
	return entries
}

// indexOf returns the index of the entry with id, or 0.
func indexOf(entries []sidebarEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return 0
}

func iconFor(e sidebarEntry) string {
	if e.Kind == entryBoard {
		return "#"
	}
	if icon, ok := icons[e.Icon]; ok {
		return icon
	}
	return "•"
}

func renderSidebar(entries []sidebarEntry, selected int, counts map[string]int, focused bool, width, height int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	var lines []string
	lastKind := entryKind(-1)
	for i, e := range entries {
		if e.Kind != lastKind {
			label := "PERSPECTIVES"
			if e.Kind == entryBoard {
				label = "BOARDS"
				lines = append(lines, "")
			}
			lines = append(lines, sectionLabelStyle.Render(label))
			lastKind = e.Kind
		}

		badge := ""
		if n, ok := counts[e.ID]; ok {
			badge = fmt.Sprintf("%d", n)
		}
		name := []rune(e.Name)
		room := inner - 3 - len(badge)
		if room < 1 {
			room = 1
		}
		if len(name) > room {
			name = name[:room]
		}
		gap := inner - 2 - len(name) - len(badge)
		if gap < 1 {
			gap = 1
		}

		line := iconFor(e) + " " + string(name) + strings.Repeat(" ", gap)
		if i == selected {
			lines = append(lines, selectedStyle.Render(line+badge))
		} else {
			lines = append(lines, line+badgeStyle.Render(badge))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}

	style := sidebarStyle
	if focused {
		style = sidebarFocusedStyle
	}
	return style.Width(inner).Height(height).Render(strings.Join(lines, "\n"))
}
