package tui

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := New("http://127.0.0.1:0", Options{DefaultPerspective: "builtin:today"})
	a.clock = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return a
}

func testGroups() []perspective.Group {
	return []perspective.Group{
		{Key: "overdue", Label: "Overdue", Tasks: []models.Task{{ID: "t1", Title: "Pay rent"}}},
		{Key: "today", Label: "Today", Tasks: []models.Task{{ID: "t2", Title: "Call mum"}, {ID: "t3", Title: "Water plants"}}},
	}
}

func testEntries() []sidebarEntry {
	return []sidebarEntry{
		{ID: "builtin:inbox", Name: "Inbox", Kind: entryPerspective},
		{ID: "builtin:today", Name: "Today", Kind: entryPerspective},
		{ID: "b1", Name: "Home", Kind: entryBoard},
	}
}

func TestFlattenGroups(t *testing.T) {
	rows := flattenGroups(testGroups())
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	if rows[0].header != "Overdue" || rows[0].count != 1 {
		t.Errorf("Unexpected first header: %+v", rows[0])
	}
	if rows[2].header != "Today" || rows[2].count != 2 {
		t.Errorf("Unexpected second header: %+v", rows[2])
	}
	if rows[4].task == nil || rows[4].task.ID != "t3" {
		t.Errorf("Expected last row to be t3, got %+v", rows[4])
	}
}

func TestFlattenGroups_SingleAllBucket(t *testing.T) {
	rows := flattenGroups([]perspective.Group{
		{Key: "all", Label: perspective.LabelAllTasks, Tasks: []models.Task{{ID: "t1"}, {ID: "t2"}}},
	})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows without header, got %d", len(rows))
	}
	for _, r := range rows {
		if r.task == nil {
			t.Error("Expected no header rows")
		}
	}
}

func TestNextTaskRow_SkipsHeaders(t *testing.T) {
	rows := flattenGroups(testGroups())

	if got := firstTaskRow(rows); got != 1 {
		t.Errorf("firstTaskRow = %d, want 1", got)
	}
	if got := nextTaskRow(rows, 1, 1); got != 3 {
		t.Errorf("down from 1 = %d, want 3", got)
	}
	if got := nextTaskRow(rows, 3, -1); got != 1 {
		t.Errorf("up from 3 = %d, want 1", got)
	}
	if got := nextTaskRow(rows, 1, -1); got != 1 {
		t.Errorf("up from first task = %d, want 1", got)
	}
	if got := nextTaskRow(rows, 4, 1); got != 4 {
		t.Errorf("down from last task = %d, want 4", got)
	}
	if got := firstTaskRow(nil); got != -1 {
		t.Errorf("firstTaskRow(nil) = %d, want -1", got)
	}
}

func TestBuildSidebar(t *testing.T) {
	perspectives := []models.Perspective{
		{ID: "builtin:inbox", Name: "Inbox", Icon: "inbox"},
		{ID: "p1", Name: "Errands"},
	}
	boards := []models.Board{{ID: "b1", Name: "Home", Kind: models.BoardContext, Value: "@home"}}

	entries := buildSidebar(perspectives, boards)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "builtin:inbox" || entries[1].ID != "p1" {
		t.Errorf("Expected perspectives first in served order, got %+v", entries[:2])
	}
	if entries[2].Kind != entryBoard {
		t.Errorf("Expected board last, got %+v", entries[2])
	}
	if got := indexOf(entries, "p1"); got != 1 {
		t.Errorf("indexOf(p1) = %d, want 1", got)
	}
	if got := indexOf(entries, "missing"); got != 0 {
		t.Errorf("indexOf(missing) = %d, want 0", got)
	}
}

func TestApp_SidebarSelectsDefault(t *testing.T) {
	a := newTestApp(t)
	a.Update(sidebarLoadedMsg{entries: testEntries()})

	if a.sideIdx != 1 {
		t.Errorf("Expected default perspective selected, got index %d", a.sideIdx)
	}
	if a.viewGen.Latest() != 1 || a.badgeGen.Latest() != 1 {
		t.Errorf("Expected one view and one badge fetch, got %d and %d", a.viewGen.Latest(), a.badgeGen.Latest())
	}
}

func TestApp_DropsStaleView(t *testing.T) {
	a := newTestApp(t)
	a.entries = testEntries()

	stale := a.viewGen.Next()
	fresh := a.viewGen.Next()

	a.Update(viewLoadedMsg{gen: stale, groups: testGroups()})
	if len(a.rows) != 0 {
		t.Fatalf("Expected stale view to be dropped, got %d rows", len(a.rows))
	}
	if !a.loading {
		t.Error("Expected app to keep loading after stale response")
	}

	a.Update(viewLoadedMsg{gen: fresh, groups: testGroups()})
	if len(a.rows) != 5 {
		t.Fatalf("Expected fresh view applied, got %d rows", len(a.rows))
	}
	if a.rowIdx != 1 {
		t.Errorf("Expected first task selected, got %d", a.rowIdx)
	}
}

func TestApp_DropsStaleBadges(t *testing.T) {
	a := newTestApp(t)

	stale := a.badgeGen.Next()
	fresh := a.badgeGen.Next()

	a.Update(badgesLoadedMsg{gen: fresh, counts: map[string]int{"builtin:inbox": 3}})
	a.Update(badgesLoadedMsg{gen: stale, counts: map[string]int{"builtin:inbox": 9}})

	if a.counts["builtin:inbox"] != 3 {
		t.Errorf("Expected fresh count 3, got %d", a.counts["builtin:inbox"])
	}
}

func TestApp_KeepsSelectionAcrossReload(t *testing.T) {
	a := newTestApp(t)
	a.entries = testEntries()

	a.Update(viewLoadedMsg{gen: a.viewGen.Next(), groups: testGroups()})
	a.rowIdx = 4 // t3

	reordered := []perspective.Group{
		{Key: "today", Label: "Today", Tasks: []models.Task{{ID: "t3"}, {ID: "t2"}}},
	}
	a.Update(viewLoadedMsg{gen: a.viewGen.Next(), groups: reordered})

	if task := a.selectedTask(); task == nil || task.ID != "t3" {
		t.Errorf("Expected t3 to stay selected, got %+v", task)
	}
}

func TestApp_ViewError(t *testing.T) {
	a := newTestApp(t)
	a.entries = testEntries()

	a.Update(viewLoadedMsg{gen: a.viewGen.Next(), err: errors.New("connection refused")})
	if !strings.HasPrefix(a.message, "Error") {
		t.Errorf("Expected error message, got %q", a.message)
	}
	if a.loading {
		t.Error("Expected loading cleared")
	}
}

func TestApp_ViewSwitch(t *testing.T) {
	a := newTestApp(t)
	a.entries = testEntries()

	a.Update(viewSwitchMsg{name: "home"})
	if a.sideIdx != 2 {
		t.Errorf("Expected board selected, got %d", a.sideIdx)
	}

	a.Update(viewSwitchMsg{name: "nowhere"})
	if !strings.Contains(a.message, "nowhere") {
		t.Errorf("Expected unknown view message, got %q", a.message)
	}
}

func TestApp_SidebarNavigation(t *testing.T) {
	a := newTestApp(t)
	a.entries = testEntries()

	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !a.sideFocused {
		t.Fatal("Expected sidebar focused after tab")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	if a.sideIdx != 1 {
		t.Errorf("Expected index 1, got %d", a.sideIdx)
	}
	a.Update(tea.KeyMsg{Type: tea.KeyUp})
	a.Update(tea.KeyMsg{Type: tea.KeyUp})
	if a.sideIdx != 0 {
		t.Errorf("Expected index clamped to 0, got %d", a.sideIdx)
	}
}

func TestApp_SearchTriggersFetch(t *testing.T) {
	a := newTestApp(t)
	a.entries = testEntries()

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if a.mode != modeSearch {
		t.Fatalf("Expected search mode, got %v", a.mode)
	}

	before := a.viewGen.Latest()
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if a.query != "r" {
		t.Errorf("Expected query %q, got %q", "r", a.query)
	}
	if a.viewGen.Latest() != before+1 {
		t.Error("Expected a new view fetch per keystroke")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if a.mode != modeList || a.query != "" {
		t.Errorf("Expected search cleared, got mode %v query %q", a.mode, a.query)
	}
}

func TestSuggestions(t *testing.T) {
	s := NewSuggestions()
	s.SetViews(testEntries())

	s.Update("vi")
	text, ok := s.Complete()
	if !ok || text != "view" {
		t.Errorf("Expected command completion to %q, got %q (%v)", "view", text, ok)
	}

	s.Update("view ho")
	text, ok = s.Complete()
	if !ok || text != "view Home" {
		t.Errorf("Expected view completion, got %q (%v)", text, ok)
	}

	s.Update("status some")
	text, ok = s.Complete()
	if !ok || text != "status someday" {
		t.Errorf("Expected status completion, got %q (%v)", text, ok)
	}

	s.Update("")
	if s.IsVisible() {
		t.Error("Expected suggestions hidden for empty input")
	}
}

func TestCmdBarExecute(t *testing.T) {
	bar := NewCmdBarModel()

	if cmd := bar.Execute(nil, "", nil); cmd != nil {
		t.Error("Expected nil command for empty input")
	}

	msg := bar.Execute(nil, "view Next Week", nil)()
	sw, ok := msg.(viewSwitchMsg)
	if !ok || sw.name != "Next Week" {
		t.Errorf("Expected viewSwitchMsg, got %#v", msg)
	}

	if _, ok := bar.Execute(nil, "quit", nil)().(tea.QuitMsg); !ok {
		t.Error("Expected quit")
	}

	res, ok := bar.Execute(nil, "status done", nil)().(cmdResultMsg)
	if !ok || res.message != "No task selected" {
		t.Errorf("Expected no selection message, got %#v", res)
	}

	res, ok = bar.Execute(nil, "frobnicate", nil)().(cmdResultMsg)
	if !ok || !strings.HasPrefix(res.message, "Unknown command") {
		t.Errorf("Expected unknown command message, got %#v", res)
	}
}

func TestRenderDetail(t *testing.T) {
	due := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		ID:       "t1",
		Title:    "Pay rent",
		Notes:    "Transfer **before** noon",
		Status:   models.TaskStatusNextAction,
		Priority: models.PriorityHigh,
		Project:  "Home",
		DueAt:    &due,
	}
	out := renderDetail(task, 60, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	for _, want := range []string{"Pay rent", "Home", "before"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected detail to contain %q", want)
		}
	}
}

func TestFormatTaskLine_TruncatesOnRunes(t *testing.T) {
	task := models.Task{ID: "t1", Title: strings.Repeat("日本語のタスク", 10), Status: models.TaskStatusInbox}
	line := formatTaskLine(task, 40, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	if !utf8.ValidString(line) {
		t.Errorf("Expected valid UTF-8, got %q", line)
	}
	if !strings.Contains(line, "...") {
		t.Errorf("Expected truncated title, got %q", line)
	}
}
