package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/fentz26/focus/internal/recompute"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the focus API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health reports whether the daemon answers its health check.
func (c *Client) Health() bool {
	var health struct {
		OK bool `json:"ok"`
	}
	return c.do(http.MethodGet, "/health", nil, &health) == nil && health.OK
}

// ListPerspectives fetches built-in and saved perspectives
func (c *Client) ListPerspectives() ([]models.Perspective, error) {
	var list []models.Perspective
	err := c.do(http.MethodGet, "/perspectives", nil, &list)
	return list, err
}

// ListBoards fetches all boards
func (c *Client) ListBoards() ([]models.Board, error) {
	var boards []models.Board
	err := c.do(http.MethodGet, "/boards", nil, &boards)
	return boards, err
}

// Badges fetches the latest badge counts
func (c *Client) Badges() (map[string]int, error) {
	var result recompute.Result
	if err := c.do(http.MethodGet, "/badges", nil, &result); err != nil {
		return nil, err
	}
	return result.Counts, nil
}

// Groups fetches the grouped tasks of a perspective or board
func (c *Client) Groups(entry sidebarEntry, search string) ([]perspective.Group, error) {
	base := "/perspectives/"
	if entry.Kind == entryBoard {
		base = "/boards/"
	}
	path := base + url.PathEscape(entry.ID) + "/groups"
	if entry.Kind == entryBoard {
		path += "?by=" + string(models.GroupDue)
		if search != "" {
			path += "&q=" + url.QueryEscape(search)
		}
	} else if search != "" {
		path += "?q=" + url.QueryEscape(search)
	}

	var groups []perspective.Group
	err := c.do(http.MethodGet, path, nil, &groups)
	return groups, err
}

// GetTask fetches a single task
func (c *Client) GetTask(id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task in the inbox
func (c *Client) CreateTask(title string) (*models.Task, error) {
	var task models.Task
	err := c.do(http.MethodPost, "/tasks", map[string]string{"title": title}, &task)
	return &task, err
}

// SetStatus moves a task to a new status
func (c *Client) SetStatus(id string, status models.TaskStatus) error {
	return c.do(http.MethodPost, "/tasks/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)}, nil)
}

// SetFlag flags or unflags a task, keeping its other fields
func (c *Client) SetFlag(task models.Task, flagged bool) error {
	in := map[string]interface{}{
		"title":    task.Title,
		"notes":    task.Notes,
		"status":   task.Status,
		"priority": task.Priority,
		"project":  task.Project,
		"context":  task.Context,
		"tags":     task.Tags,
		"due_at":   task.DueAt,
		"defer_at": task.DeferAt,
		"flagged":  flagged,
	}
	return c.do(http.MethodPut, "/tasks/"+url.PathEscape(task.ID), in, nil)
}

// DeleteTask removes a task
func (c *Client) DeleteTask(id string) error {
	return c.do(http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}
