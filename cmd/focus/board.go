package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Manage boards (single context, project or tag views)",
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List boards",
	RunE:  runBoardList,
}

var boardAddCmd = &cobra.Command{
	Use:   "add [kind] [value]",
	Short: "Add a board for a context, project or tag",
	Args:  cobra.ExactArgs(2),
	RunE:  runBoardAdd,
}

var boardShowCmd = &cobra.Command{
	Use:   "show [board]",
	Short: "Show a board's tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoardShow,
}

var boardDeleteCmd = &cobra.Command{
	Use:   "delete [board]",
	Short: "Delete a board",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoardDelete,
}

var (
	boardName   string
	boardBy     string
	boardSearch string
)

func init() {
	boardCmd.AddCommand(boardListCmd, boardAddCmd, boardShowCmd, boardDeleteCmd)

	boardAddCmd.Flags().StringVar(&boardName, "name", "", "Board name (default: the value)")
	boardShowCmd.Flags().StringVar(&boardBy, "by", string(models.GroupNone), "Group by: none, status, priority, project, context, due")
	boardShowCmd.Flags().StringVar(&boardSearch, "search", "", "Only show tasks whose title or notes contain this text")
}

func runBoardList(cmd *cobra.Command, args []string) error {
	var boards []models.Board
	if err := apiGet("/boards", &boards); err != nil {
		return err
	}

	if len(boards) == 0 {
		fmt.Println("No boards found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tVALUE")
	for _, b := range boards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncateID(b.ID), b.Name, b.Kind, b.Value)
	}
	w.Flush()
	return nil
}

func runBoardAdd(cmd *cobra.Command, args []string) error {
	b := models.Board{
		Name:  boardName,
		Kind:  models.BoardKind(strings.ToLower(args[0])),
		Value: args[1],
	}

	var created models.Board
	if err := apiPost("/boards", b, &created); err != nil {
		return err
	}

	fmt.Printf("Created board: %s\n", created.ID)
	return nil
}

func runBoardShow(cmd *cobra.Command, args []string) error {
	b, err := resolveBoard(args[0])
	if err != nil {
		return err
	}

	query, err := viewQuery(boardBy, boardSearch, "")
	if err != nil {
		return err
	}

	var groups []perspective.Group
	if err := apiGet("/boards/"+url.PathEscape(b.ID)+"/groups"+query, &groups); err != nil {
		return err
	}

	fmt.Printf("%s (%s %s)\n\n", b.Name, b.Kind, b.Value)
	printGroups(groups)
	return nil
}

func runBoardDelete(cmd *cobra.Command, args []string) error {
	b, err := resolveBoard(args[0])
	if err != nil {
		return err
	}
	if err := apiDelete("/boards/" + url.PathEscape(b.ID)); err != nil {
		return err
	}

	fmt.Printf("Deleted board %s\n", b.Name)
	return nil
}

// resolveBoard finds a board by id, name, or unique id prefix.
func resolveBoard(arg string) (*models.Board, error) {
	var boards []models.Board
	if err := apiGet("/boards", &boards); err != nil {
		return nil, err
	}

	for i := range boards {
		if boards[i].ID == arg || strings.EqualFold(boards[i].Name, arg) {
			return &boards[i], nil
		}
	}

	id, err := matchID(arg, boards, func(b models.Board) string { return b.ID })
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	for i := range boards {
		if boards[i].ID == id {
			return &boards[i], nil
		}
	}
	return nil, fmt.Errorf("board %q not found", arg)
}
