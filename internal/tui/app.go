// Package tui provides the interactive terminal UI for focus.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/recompute"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true)

	searchStyle = lipgloss.NewStyle().
			Foreground(cyanColor)

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

const sidebarWidth = 30

type mode int

const (
	modeList mode = iota
	modeDetail
	modeSearch
	modeCommand
)

// Options configure the TUI.
type Options struct {
	// DefaultPerspective is selected on start.
	DefaultPerspective string
	// Refresh is the polling interval for badges and the current view.
	Refresh time.Duration
}

// App is the main TUI application model.
type App struct {
	client *Client
	opts   Options
	clock  func() time.Time

	entries     []sidebarEntry
	sideIdx     int
	sideFocused bool
	counts      map[string]int

	rows   []row
	rowIdx int

	search      textinput.Model
	query       string
	cmdbar      *CmdBarModel
	suggestions *Suggestions

	viewport viewport.Model
	detail   *models.Task

	mode         mode
	width        int
	height       int
	message      string
	loading      bool
	daemonOnline bool

	// Each fetch takes a generation; a response whose generation is no
	// longer current was overtaken by a newer fetch and is dropped.
	viewGen  recompute.Tracker
	badgeGen recompute.Tracker
}

// New creates a new TUI application.
func New(apiAddr string, opts Options) *App {
	if opts.Refresh <= 0 {
		opts.Refresh = 5 * time.Second
	}

	si := textinput.New()
	si.Placeholder = "search titles and notes"
	si.Prompt = "/ "
	si.CharLimit = 128

	return &App{
		client:      NewClient(apiAddr),
		opts:        opts,
		clock:       time.Now,
		search:      si,
		cmdbar:      NewCmdBarModel(),
		suggestions: NewSuggestions(),
		viewport:    viewport.New(80, 20),
		rowIdx:      -1,
		loading:     true,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.fetchSidebar(),
		a.checkDaemon(),
		a.tickCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = max(20, msg.Width-sidebarWidth-4)
		a.viewport.Height = max(5, msg.Height-6)
		a.search.Width = max(10, msg.Width-sidebarWidth-8)
		a.cmdbar.SetWidth(max(10, msg.Width-8))
		if a.detail != nil {
			a.viewport.SetContent(renderDetail(a.detail, a.viewport.Width, a.clock()))
		}

	case sidebarLoadedMsg:
		if msg.err != nil {
			a.loading = false
			a.message = "Error: " + msg.err.Error()
			return a, nil
		}
		current := a.opts.DefaultPerspective
		if len(a.entries) > 0 {
			current = a.entries[a.sideIdx].ID
		}
		a.entries = msg.entries
		a.sideIdx = indexOf(a.entries, current)
		a.suggestions.SetViews(a.entries)
		return a, tea.Batch(a.fetchView(), a.fetchBadges())

	case viewLoadedMsg:
		if !a.viewGen.Current(msg.gen) {
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			a.message = "Error: " + msg.err.Error()
			return a, nil
		}
		a.setRows(flattenGroups(msg.groups))

	case badgesLoadedMsg:
		if !a.badgeGen.Current(msg.gen) {
			return a, nil
		}
		if msg.err == nil {
			a.counts = msg.counts
		}

	case taskLoadedMsg:
		if msg.err != nil {
			a.message = "Error: " + msg.err.Error()
			a.mode = modeList
			return a, nil
		}
		a.detail = msg.task
		a.viewport.SetContent(renderDetail(a.detail, a.viewport.Width, a.clock()))
		a.viewport.GotoTop()

	case viewSwitchMsg:
		for i, e := range a.entries {
			if strings.EqualFold(e.Name, msg.name) || e.ID == msg.name {
				return a, a.selectEntry(i)
			}
		}
		a.message = fmt.Sprintf("No view named %q", msg.name)

	case cmdResultMsg:
		a.message = msg.message
		return a, a.refresh()

	case daemonStatusMsg:
		a.daemonOnline = msg.online

	case tickMsg:
		return a, tea.Batch(a.fetchBadges(), a.fetchView(), a.checkDaemon(), a.tickCmd())
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeCommand:
		return a.handleCommandKey(msg)
	case modeDetail:
		return a.handleDetailKey(msg)
	}

	switch msg.String() {
	case "q":
		return tea.Quit

	case "tab":
		a.sideFocused = !a.sideFocused

	case "up", "k":
		if a.sideFocused {
			if a.sideIdx > 0 {
				return a.selectEntry(a.sideIdx - 1)
			}
		} else {
			a.rowIdx = nextTaskRow(a.rows, a.rowIdx, -1)
		}

	case "down", "j":
		if a.sideFocused {
			if a.sideIdx < len(a.entries)-1 {
				return a.selectEntry(a.sideIdx + 1)
			}
		} else {
			a.rowIdx = nextTaskRow(a.rows, a.rowIdx, 1)
		}

	case "enter":
		if a.sideFocused {
			a.sideFocused = false
			return nil
		}
		if t := a.selectedTask(); t != nil {
			a.mode = modeDetail
			a.detail = nil
			return a.fetchTask(t.ID)
		}

	case "/":
		a.mode = modeSearch
		a.search.SetValue(a.query)
		a.search.CursorEnd()
		return a.search.Focus()

	case ":":
		a.mode = modeCommand
		a.message = ""
		return a.cmdbar.Focus()

	case "esc":
		if a.query != "" {
			a.query = ""
			return a.fetchView()
		}

	case "x":
		if t := a.selectedTask(); t != nil {
			return a.completeTask(*t)
		}

	case "f":
		if t := a.selectedTask(); t != nil {
			return a.toggleFlag(*t)
		}

	case "r":
		return a.refresh()
	}
	return nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.mode = modeList
		a.search.Blur()
		if a.query != "" {
			a.query = ""
			return a.fetchView()
		}
		return nil
	case "enter":
		a.mode = modeList
		a.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	// Search as you type; superseded responses are dropped by generation.
	if q := strings.TrimSpace(a.search.Value()); q != a.query {
		a.query = q
		return tea.Batch(cmd, a.fetchView())
	}
	return cmd
}

func (a *App) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.mode = modeList
		a.cmdbar.Blur()
		a.suggestions.Update("")
		return nil
	case "up":
		a.suggestions.Prev()
		return nil
	case "down":
		a.suggestions.Next()
		return nil
	case "tab":
		if text, ok := a.suggestions.Complete(); ok {
			a.cmdbar.SetValue(text + " ")
			a.suggestions.Update(a.cmdbar.Value())
		}
		return nil
	case "enter":
		input := strings.TrimSpace(a.cmdbar.Submit())
		a.mode = modeList
		a.suggestions.Update("")
		return a.cmdbar.Execute(a.client, input, a.selectedTask())
	}

	cmd := a.cmdbar.Update(msg)
	a.suggestions.Update(a.cmdbar.Value())
	return cmd
}

func (a *App) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		a.mode = modeList
		a.detail = nil
		return nil
	case "x":
		if a.detail != nil {
			return a.completeTask(*a.detail)
		}
		return nil
	case "f":
		if a.detail != nil {
			return a.toggleFlag(*a.detail)
		}
		return nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return cmd
}

// selectEntry switches the main pane to entry i.
func (a *App) selectEntry(i int) tea.Cmd {
	a.sideIdx = i
	a.rows = nil
	a.rowIdx = -1
	a.loading = true
	return a.fetchView()
}

// setRows installs freshly loaded rows, keeping the selected task selected
// when it is still visible.
func (a *App) setRows(rows []row) {
	keep := ""
	if t := a.selectedTask(); t != nil {
		keep = t.ID
	}
	a.rows = rows
	a.rowIdx = findTaskRow(rows, keep)
	if a.rowIdx < 0 {
		a.rowIdx = firstTaskRow(rows)
	}
}

func (a *App) selectedTask() *models.Task {
	if a.rowIdx < 0 || a.rowIdx >= len(a.rows) {
		return nil
	}
	return a.rows[a.rowIdx].task
}

func (a *App) currentEntry() (sidebarEntry, bool) {
	if a.sideIdx < 0 || a.sideIdx >= len(a.entries) {
		return sidebarEntry{}, false
	}
	return a.entries[a.sideIdx], true
}

// --- Commands ---

func (a *App) refresh() tea.Cmd {
	cmds := []tea.Cmd{a.fetchView(), a.fetchBadges()}
	if a.mode == modeDetail && a.detail != nil {
		cmds = append(cmds, a.fetchTask(a.detail.ID))
	}
	return tea.Batch(cmds...)
}

func (a *App) fetchSidebar() tea.Cmd {
	return func() tea.Msg {
		perspectives, err := a.client.ListPerspectives()
		if err != nil {
			return sidebarLoadedMsg{err: err}
		}
		boards, err := a.client.ListBoards()
		if err != nil {
			return sidebarLoadedMsg{err: err}
		}
		return sidebarLoadedMsg{entries: buildSidebar(perspectives, boards)}
	}
}

func (a *App) fetchView() tea.Cmd {
	entry, ok := a.currentEntry()
	if !ok {
		return nil
	}
	gen := a.viewGen.Next()
	query := a.query
	return func() tea.Msg {
		groups, err := a.client.Groups(entry, query)
		return viewLoadedMsg{gen: gen, entryID: entry.ID, groups: groups, err: err}
	}
}

func (a *App) fetchBadges() tea.Cmd {
	gen := a.badgeGen.Next()
	return func() tea.Msg {
		counts, err := a.client.Badges()
		return badgesLoadedMsg{gen: gen, counts: counts, err: err}
	}
}

func (a *App) fetchTask(id string) tea.Cmd {
	return func() tea.Msg {
		task, err := a.client.GetTask(id)
		return taskLoadedMsg{task: task, err: err}
	}
}

func (a *App) completeTask(t models.Task) tea.Cmd {
	return func() tea.Msg {
		status := models.TaskStatusCompleted
		verb := "Completed"
		if t.Status == models.TaskStatusCompleted {
			status = models.TaskStatusNextAction
			verb = "Reopened"
		}
		if err := a.client.SetStatus(t.ID, status); err != nil {
			return cmdResultMsg{"Error: " + err.Error()}
		}
		return cmdResultMsg{fmt.Sprintf("%s %q", verb, t.Title)}
	}
}

func (a *App) toggleFlag(t models.Task) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.SetFlag(t, !t.Flagged); err != nil {
			return cmdResultMsg{"Error: " + err.Error()}
		}
		if t.Flagged {
			return cmdResultMsg{fmt.Sprintf("Unflagged %q", t.Title)}
		}
		return cmdResultMsg{fmt.Sprintf("Flagged %q", t.Title)}
	}
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		return daemonStatusMsg{online: a.client.Health()}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(a.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// --- View ---

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	daemonStatus := onlineStyle.Render("● daemon")
	if !a.daemonOnline {
		daemonStatus = offlineStyle.Render("○ daemon")
	}
	b.WriteString(titleStyle.Render("focus") + "  " + daemonStatus + "\n")

	contentHeight := max(5, a.height-5)
	mainWidth := max(20, a.width-sidebarWidth-2)

	side := renderSidebar(a.entries, a.sideIdx, a.counts, a.sideFocused && a.mode == modeList, sidebarWidth, contentHeight-2)
	main := lipgloss.NewStyle().Width(mainWidth).Height(contentHeight).Render(a.renderMain(mainWidth, contentHeight))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, side, " ", main) + "\n")

	switch {
	case a.mode == modeCommand:
		b.WriteString(a.cmdbar.View())
		if a.suggestions.IsVisible() {
			b.WriteString("\n" + a.suggestions.Render(a.width))
		}
	case a.message != "":
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString(msgStyle.Render(a.message))
	default:
		b.WriteString(a.cmdbar.View())
	}
	b.WriteString("\n")

	b.WriteString(statusBarStyle.Width(a.width).Render(a.statusLine()))
	return b.String()
}

func (a *App) renderMain(width, height int) string {
	if a.mode == modeDetail {
		if a.detail == nil {
			return "\n  Loading..."
		}
		return a.viewport.View()
	}

	var b strings.Builder
	title := "…"
	if e, ok := a.currentEntry(); ok {
		title = e.Name
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	switch {
	case a.mode == modeSearch:
		b.WriteString("  " + a.search.View())
	case a.query != "":
		b.WriteString("  " + searchStyle.Render("/ "+a.query))
	}
	b.WriteString("\n\n")

	if a.loading {
		b.WriteString("  Loading tasks...")
		return b.String()
	}
	b.WriteString(renderRows(a.rows, a.rowIdx, !a.sideFocused, width, height-3, a.clock()))
	return b.String()
}

func (a *App) statusLine() string {
	switch a.mode {
	case modeDetail:
		return " ↑↓:scroll | x:complete | f:flag | Esc:back"
	case modeSearch:
		return " Type to search | Enter:keep | Esc:clear"
	case modeCommand:
		return " Tab:complete | Enter:run | Esc:cancel"
	}
	return fmt.Sprintf(" Tasks: %d | ↑↓:nav | Tab:sidebar | Enter:open | /:search | x:complete | f:flag | r:refresh | ::command | q:quit",
		taskCount(a.rows))
}
