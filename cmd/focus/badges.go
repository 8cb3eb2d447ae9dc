package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/recompute"
	"github.com/spf13/cobra"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Show the task count of every perspective and board",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	var result recompute.Result
	if err := apiGet("/badges", &result); err != nil {
		return err
	}
	var perspectives []models.Perspective
	if err := apiGet("/perspectives", &perspectives); err != nil {
		return err
	}
	var boards []models.Board
	if err := apiGet("/boards", &boards); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIEW\tKIND\tCOUNT")
	for _, p := range perspectives {
		kind := "smart"
		if p.IsBuiltIn {
			kind = "built-in"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", p.Name, kind, result.Counts[p.ID])
	}
	for _, b := range boards {
		fmt.Fprintf(w, "%s\tboard:%s\t%d\n", b.Name, b.Kind, result.Counts[b.ID])
	}
	w.Flush()
	return nil
}
