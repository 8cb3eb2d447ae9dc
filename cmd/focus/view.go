package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [perspective]",
	Short: "Show the tasks of a perspective, grouped",
	Long: `Shows a perspective by id, id prefix, name, or built-in name
(inbox, today, upcoming, flagged, next, waiting, someday, completed, all).`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var (
	viewGroup  string
	viewSearch string
	viewNow    string
)

func init() {
	viewCmd.Flags().StringVar(&viewGroup, "group", "", "Override grouping: none, status, priority, project, context, due")
	viewCmd.Flags().StringVar(&viewSearch, "search", "", "Only show tasks whose title or notes contain this text")
	viewCmd.Flags().StringVar(&viewNow, "now", "", "Evaluate date rules as of this date (YYYY-MM-DD or RFC3339)")
}

func runView(cmd *cobra.Command, args []string) error {
	p, err := resolvePerspective(args[0])
	if err != nil {
		return err
	}

	query, err := viewQuery(viewGroup, viewSearch, viewNow)
	if err != nil {
		return err
	}

	var groups []perspective.Group
	if err := apiGet("/perspectives/"+url.PathEscape(p.ID)+"/groups"+query, &groups); err != nil {
		return err
	}

	fmt.Printf("%s\n\n", p.Name)
	printGroups(groups)
	return nil
}

// viewQuery encodes the shared view parameters as a query string.
func viewQuery(group, search, now string) (string, error) {
	values := url.Values{}
	if group != "" {
		values.Set("by", group)
	}
	if search != "" {
		values.Set("q", search)
	}
	if now != "" {
		t, err := parseDate(now)
		if err != nil {
			return "", fmt.Errorf("--now: %w", err)
		}
		values.Set("now", t.Format(time.RFC3339))
	}
	if len(values) == 0 {
		return "", nil
	}
	return "?" + values.Encode(), nil
}

// resolvePerspective finds a perspective by id, built-in name, display
// name, or unique id prefix.
func resolvePerspective(arg string) (*models.Perspective, error) {
	var list []models.Perspective
	if err := apiGet("/perspectives", &list); err != nil {
		return nil, err
	}

	for i := range list {
		p := &list[i]
		if p.ID == arg || p.ID == perspective.BuiltInPrefix+arg || strings.EqualFold(p.Name, arg) {
			return p, nil
		}
	}

	id, err := matchID(arg, list, func(p models.Perspective) string { return p.ID })
	if err != nil {
		return nil, fmt.Errorf("perspective: %w", err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("perspective %q not found", arg)
}

func printGroups(groups []perspective.Group) {
	if len(groups) == 0 {
		fmt.Println("No tasks")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.Label, len(g.Tasks))
		for _, t := range g.Tasks {
			flag := " "
			if t.Flagged {
				flag = "*"
			}
			fmt.Fprintf(w, "  %s %s\t%s\t%s\t%s\n",
				flag, truncateID(t.ID), truncate(t.Title, 50), t.Priority, formatDate(t.DueAt))
		}
	}
	w.Flush()
}
