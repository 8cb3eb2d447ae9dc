package tui

import (
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
)

// entryKind distinguishes sidebar entries.
type entryKind int

const (
	entryPerspective entryKind = iota
	entryBoard
)

// sidebarEntry is one selectable view in the sidebar.
type sidebarEntry struct {
	ID   string
	Name string
	Icon string
	Kind entryKind
}

// row is one line of the grouped task list: a group header or a task.
type row struct {
	header string
	count  int
	task   *models.Task
}

type sidebarLoadedMsg struct {
	entries []sidebarEntry
	err     error
}

// viewLoadedMsg carries the generation of the fetch that produced it so
// that responses overtaken by a newer fetch can be dropped.
type viewLoadedMsg struct {
	gen     uint64
	entryID string
	groups  []perspective.Group
	err     error
}

type badgesLoadedMsg struct {
	gen    uint64
	counts map[string]int
	err    error
}

type taskLoadedMsg struct {
	task *models.Task
	err  error
}

type cmdResultMsg struct {
	message string
}

type daemonStatusMsg struct {
	online bool
}

type tickMsg time.Time
