package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fentz26/focus/internal/api"
	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args[0], models.TaskStatusCompleted)
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [task-id] [status]",
	Short: "Move a task to another status (inbox, next_action, waiting, someday, completed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args[0], models.TaskStatus(args[1]))
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var (
	taskTitle    string
	taskNotes    string
	taskStatus   string
	taskPriority string
	taskProject  string
	taskContext  string
	taskTags     []string
	taskDue      string
	taskDefer    string
	taskFlag     bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskDoneCmd, taskStatusCmd, taskDeleteCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskNotes, "notes", "", "Task notes (markdown)")
	taskAddCmd.Flags().StringVar(&taskStatus, "status", "", "Initial status (default inbox)")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "", "Priority: high, medium, low (default medium)")
	taskAddCmd.Flags().StringVar(&taskProject, "project", "", "Project name")
	taskAddCmd.Flags().StringVar(&taskContext, "context", "", "Context, e.g. @home")
	taskAddCmd.Flags().StringArrayVar(&taskTags, "tag", nil, "Tag (repeatable)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	taskAddCmd.Flags().StringVar(&taskDefer, "defer", "", "Defer until (YYYY-MM-DD or RFC3339)")
	taskAddCmd.Flags().BoolVar(&taskFlag, "flag", false, "Flag the task")
	taskAddCmd.MarkFlagRequired("title")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	due, err := parseDate(taskDue)
	if err != nil {
		return fmt.Errorf("--due: %w", err)
	}
	deferAt, err := parseDate(taskDefer)
	if err != nil {
		return fmt.Errorf("--defer: %w", err)
	}

	in := api.TaskInput{
		Title:    taskTitle,
		Notes:    taskNotes,
		Status:   models.TaskStatus(taskStatus),
		Priority: models.Priority(taskPriority),
		Project:  taskProject,
		Context:  taskContext,
		Tags:     taskTags,
		DueAt:    due,
		DeferAt:  deferAt,
		Flagged:  taskFlag,
	}

	var task models.Task
	if err := apiPost("/tasks", in, &task); err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	var tasks []models.Task
	if err := apiGet("/tasks", &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	printTasks(tasks)
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	id, err := resolveTaskID(args[0])
	if err != nil {
		return err
	}

	var task models.Task
	if err := apiGet("/tasks/"+id, &task); err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", task.ID)
	fmt.Printf("Title:     %s\n", task.Title)
	fmt.Printf("Status:    %s\n", perspective.StatusLabel(task.Status))
	fmt.Printf("Priority:  %s\n", task.Priority)
	if task.Project != "" {
		fmt.Printf("Project:   %s\n", task.Project)
	}
	if task.Context != "" {
		fmt.Printf("Context:   %s\n", task.Context)
	}
	if len(task.Tags) > 0 {
		fmt.Printf("Tags:      %s\n", strings.Join(task.Tags, ", "))
	}
	if task.DueAt != nil {
		fmt.Printf("Due:       %s\n", formatDate(task.DueAt))
	}
	if task.DeferAt != nil {
		fmt.Printf("Deferred:  %s\n", formatDate(task.DeferAt))
	}
	if task.Flagged {
		fmt.Println("Flagged:   yes")
	}
	fmt.Printf("Created:   %s\n", task.CreatedAt.Local().Format(time.RFC3339))
	fmt.Printf("Updated:   %s\n", task.UpdatedAt.Local().Format(time.RFC3339))
	if task.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", task.CompletedAt.Local().Format(time.RFC3339))
	}
	if task.Notes != "" {
		fmt.Printf("\n%s\n", task.Notes)
	}

	return nil
}

func setStatus(arg string, status models.TaskStatus) error {
	id, err := resolveTaskID(arg)
	if err != nil {
		return err
	}

	var task models.Task
	if err := apiPost("/tasks/"+id+"/status", map[string]string{"status": string(status)}, &task); err != nil {
		return err
	}

	fmt.Printf("Task %s is now %s\n", truncateID(task.ID), perspective.StatusLabel(task.Status))
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	id, err := resolveTaskID(args[0])
	if err != nil {
		return err
	}
	if err := apiDelete("/tasks/" + id); err != nil {
		return err
	}

	fmt.Printf("Deleted task %s\n", truncateID(id))
	return nil
}

// resolveTaskID expands a unique id prefix, as printed by task list, to
// the full task id.
func resolveTaskID(arg string) (string, error) {
	var tasks []models.Task
	if err := apiGet("/tasks", &tasks); err != nil {
		return "", err
	}
	return matchID(arg, tasks, func(t models.Task) string { return t.ID })
}

func matchID[T any](arg string, items []T, id func(T) string) (string, error) {
	var matches []string
	for _, item := range items {
		full := id(item)
		if full == arg {
			return full, nil
		}
		if strings.HasPrefix(full, arg) {
			matches = append(matches, full)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no match for %q", arg)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
}

// --- Helpers ---

func printTasks(tasks []models.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tFLAG")
	for _, t := range tasks {
		flag := ""
		if t.Flagged {
			flag = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(t.ID), truncate(t.Title, 40), t.Status, t.Priority, formatDate(t.DueAt), flag)
	}
	w.Flush()
}

// parseDate accepts YYYY-MM-DD in local time or a full RFC3339 timestamp.
// An empty string means no date.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("date %q must be YYYY-MM-DD or RFC3339", s)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
