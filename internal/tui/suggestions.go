package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Suggestions provides autocomplete for the command bar
type Suggestions struct {
	views       []SuggestionItem
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
	replace     string // text kept before the completed word
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
}

var commandSuggestions = []SuggestionItem{
	{Text: "add", Description: "Add a task to the inbox"},
	{Text: "status", Description: "Move the selected task"},
	{Text: "delete", Description: "Delete the selected task"},
	{Text: "view", Description: "Switch to a perspective or board"},
	{Text: "quit", Description: "Leave focus"},
}

var statusSuggestions = []SuggestionItem{
	{Text: "inbox"},
	{Text: "next_action"},
	{Text: "waiting"},
	{Text: "someday"},
	{Text: "completed"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{}
}

// SetViews updates the names offered after "view ".
func (s *Suggestions) SetViews(entries []sidebarEntry) {
	s.views = make([]SuggestionItem, len(entries))
	for i, e := range entries {
		kind := "perspective"
		if e.Kind == entryBoard {
			kind = "board"
		}
		s.views[i] = SuggestionItem{Text: e.Name, Description: kind}
	}
}

// Update updates suggestions based on current input
func (s *Suggestions) Update(input string) {
	cmd, rest, hasArg := strings.Cut(input, " ")
	switch {
	case input == "":
		s.visible = false
		s.filtered = nil
	case !hasArg:
		s.replace = ""
		s.visible = true
		s.filter(commandSuggestions, cmd)
	case cmd == "view":
		s.replace = "view "
		s.visible = true
		s.filter(s.views, rest)
	case cmd == "status" && !strings.Contains(rest, " "):
		s.replace = "status "
		s.visible = true
		s.filter(statusSuggestions, rest)
	default:
		s.visible = false
		s.filtered = nil
	}
}

func (s *Suggestions) filter(items []SuggestionItem, query string) {
	query = strings.ToLower(query)
	s.filtered = []SuggestionItem{}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Text), query) {
			s.filtered = append(s.filtered, item)
		}
	}
	// An exact match needs no completion.
	if len(s.filtered) == 1 && strings.EqualFold(s.filtered[0].Text, query) {
		s.filtered = nil
	}
	s.selectedIdx = 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// Complete returns the input with the selected suggestion applied.
func (s *Suggestions) Complete() (string, bool) {
	item := s.Selected()
	if item == nil {
		return "", false
	}
	return s.replace + item.Text, true
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	suggestionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(width - 4)

	itemStyle := lipgloss.NewStyle().
		Foreground(fgColor)

	descStyle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true)

	// Show max 5 suggestions
	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			more := len(s.filtered) - maxVisible
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", more)))
			break
		}

		line := ""
		if i == s.selectedIdx {
			line = selectedStyle.Render("▶ " + item.Text)
			if item.Description != "" {
				line += " " + selectedStyle.Render(item.Description)
			}
		} else {
			line = itemStyle.Render("  " + item.Text)
			if item.Description != "" {
				line += " " + descStyle.Render(item.Description)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return suggestionStyle.Render(strings.TrimRight(b.String(), "\n"))
}
