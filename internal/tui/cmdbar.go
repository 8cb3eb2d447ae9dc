package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/focus/internal/models"
)

var (
	cmdBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// CmdBarModel manages the command input bar
type CmdBarModel struct {
	input   textinput.Model
	focused bool
}

// NewCmdBarModel creates a new command bar
func NewCmdBarModel() *CmdBarModel {
	ti := textinput.New()
	ti.Placeholder = "add <title> | status <status> | delete | view <name> | quit"
	ti.CharLimit = 256
	return &CmdBarModel{
		input: ti,
	}
}

// Focus focuses the command bar
func (m *CmdBarModel) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur unfocuses the command bar
func (m *CmdBarModel) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
}

// Focused reports whether the bar is taking input.
func (m *CmdBarModel) Focused() bool {
	return m.focused
}

// Value returns the current input.
func (m *CmdBarModel) Value() string {
	return m.input.Value()
}

// SetValue replaces the current input.
func (m *CmdBarModel) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// Submit returns the current input and blurs
func (m *CmdBarModel) Submit() string {
	val := m.input.Value()
	m.Blur()
	return val
}

// SetWidth sets the input width.
func (m *CmdBarModel) SetWidth(w int) {
	m.input.Width = w
}

// Update forwards input messages to the text field.
func (m *CmdBarModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// View renders the command bar
func (m *CmdBarModel) View() string {
	if m.focused {
		prompt := promptStyle.Render(": ")
		return cmdBarStyle.Render(prompt + m.input.View())
	}
	return cmdBarStyle.Render("Press : for commands, / to search")
}

// viewSwitchMsg asks the app to select the sidebar entry matching name.
type viewSwitchMsg struct {
	name string
}

// Execute processes a command against the selected task.
func (m *CmdBarModel) Execute(client *Client, input string, selected *models.Task) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "q", "quit", "exit":
		return tea.Quit
	case "view":
		if len(args) < 1 {
			return msgCmd(cmdResultMsg{"Usage: view <perspective or board>"})
		}
		return msgCmd(viewSwitchMsg{strings.Join(args, " ")})
	}

	return func() tea.Msg {
		switch cmd {
		case "add":
			if len(args) < 1 {
				return cmdResultMsg{"Usage: add <title>"}
			}
			task, err := client.CreateTask(strings.Join(args, " "))
			if err != nil {
				return cmdResultMsg{fmt.Sprintf("Error: %v", err)}
			}
			return cmdResultMsg{fmt.Sprintf("Added %q to the inbox", task.Title)}

		case "status":
			if selected == nil {
				return cmdResultMsg{"No task selected"}
			}
			if len(args) != 1 {
				return cmdResultMsg{"Usage: status <inbox|next_action|waiting|someday|completed>"}
			}
			if err := client.SetStatus(selected.ID, models.TaskStatus(args[0])); err != nil {
				return cmdResultMsg{fmt.Sprintf("Error: %v", err)}
			}
			return cmdResultMsg{fmt.Sprintf("Moved %q to %s", selected.Title, args[0])}

		case "delete":
			if selected == nil {
				return cmdResultMsg{"No task selected"}
			}
			if err := client.DeleteTask(selected.ID); err != nil {
				return cmdResultMsg{fmt.Sprintf("Error: %v", err)}
			}
			return cmdResultMsg{fmt.Sprintf("Deleted %q", selected.Title)}

		default:
			return cmdResultMsg{fmt.Sprintf("Unknown command: %s (try: add, status, delete, view, quit)", cmd)}
		}
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
