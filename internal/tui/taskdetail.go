package tui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
)

var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(mutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(11)

	valueStyle = lipgloss.NewStyle().
			Foreground(fgColor)
)

var (
	mdMu sync.Mutex
	// Renderers are cached per wrap width. A fixed style avoids the
	// terminal background query WithAutoStyle performs.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// markdownStyle picks the glamour style, honouring GLAMOUR_STYLE.
func markdownStyle() string {
	if s := os.Getenv("GLAMOUR_STYLE"); s != "" {
		return s
	}
	return "dark"
}

// renderMarkdown renders task notes. Rendering errors fall back to the
// raw text.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	mdMu.Lock()
	defer mdMu.Unlock()

	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(markdownStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// renderDetail builds the scrollable detail view of a task.
func renderDetail(t *models.Task, width int, now time.Time) string {
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(t.Title) + "\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	field("Status", perspective.StatusLabel(t.Status))
	field("Priority", string(t.Priority))
	field("Project", t.Project)
	field("Context", t.Context)
	if len(t.Tags) > 0 {
		field("Tags", strings.Join(t.Tags, ", "))
	}
	if t.DueAt != nil {
		_, bucket := perspective.DueBucket(*t, now)
		field("Due", fmt.Sprintf("%s (%s)", t.DueAt.In(now.Location()).Format("Mon Jan 2 2006"), bucket))
	}
	if t.DeferAt != nil {
		field("Deferred", t.DeferAt.In(now.Location()).Format("Mon Jan 2 2006"))
	}
	if t.Flagged {
		field("Flagged", "yes")
	}
	field("Created", t.CreatedAt.In(now.Location()).Format(time.RFC822))
	if t.CompletedAt != nil {
		field("Completed", t.CompletedAt.In(now.Location()).Format(time.RFC822))
	}
	field("ID", t.ID)

	if notes := renderMarkdown(t.Notes, width); notes != "" {
		b.WriteString("\n" + notes + "\n")
	}

	return b.String()
}
