// Package api provides the HTTP API and service layer for focus.
package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/audit"
	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/fentz26/focus/internal/recompute"
	"github.com/fentz26/focus/internal/store"
)

// Service provides the business logic behind the HTTP API.
type Service struct {
	store     *store.Store
	journal   *audit.Journal
	recompute *recompute.Coordinator
	clock     func() time.Time
}

// NewService creates a new service. coord may be nil, in which case badge
// counts are always computed on demand.
func NewService(s *store.Store, journal *audit.Journal, coord *recompute.Coordinator) *Service {
	return &Service{
		store:     s,
		journal:   journal,
		recompute: coord,
		clock:     time.Now,
	}
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// record journals a mutation and schedules a badge recomputation.
func (s *Service) record(action string, inputs interface{}, entityID string) {
	if _, err := s.journal.Record(action, inputs, entityID); err != nil {
		log.Printf("Failed to journal %s for %s: %v", action, entityID, err)
	}
	if s.recompute != nil {
		s.recompute.Request()
	}
}

// --- Task Operations ---

// TaskInput carries the writable fields of a task.
type TaskInput struct {
	Title    string            `json:"title"`
	Notes    string            `json:"notes"`
	Status   models.TaskStatus `json:"status"`
	Priority models.Priority   `json:"priority"`
	Project  string            `json:"project"`
	Context  string            `json:"context"`
	Tags     []string          `json:"tags"`
	DueAt    *time.Time        `json:"due_at"`
	DeferAt  *time.Time        `json:"defer_at"`
	Flagged  bool              `json:"flagged"`
}

func (in *TaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	in.Status = models.TaskStatus(strings.ToLower(string(in.Status)))
	if in.Status == "" {
		in.Status = models.TaskStatusInbox
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, in.Status)
	}
	in.Priority = models.Priority(strings.ToLower(string(in.Priority)))
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalid, in.Priority)
	}
	in.Project = strings.TrimSpace(in.Project)
	in.Context = strings.TrimSpace(in.Context)

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	in.Tags = tags
	return nil
}

// CreateTask creates a new task.
func (s *Service) CreateTask(in TaskInput) (*models.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	task, err := s.store.CreateTask(store.NewTask{
		Title:    in.Title,
		Notes:    in.Notes,
		Status:   in.Status,
		Priority: in.Priority,
		Project:  in.Project,
		Context:  in.Context,
		Tags:     in.Tags,
		DueAt:    in.DueAt,
		DeferAt:  in.DeferAt,
		Flagged:  in.Flagged,
	})
	if err != nil {
		return nil, err
	}

	s.record("task.create", in, task.ID)
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(id string) (*models.Task, error) {
	task, err := s.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// ListTasks returns every task in creation order.
func (s *Service) ListTasks() ([]models.Task, error) {
	return s.store.ListTasks()
}

// UpdateTask replaces the writable fields of a task.
func (s *Service) UpdateTask(id string, in TaskInput) (*models.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	task.Title = in.Title
	task.Notes = in.Notes
	task.Status = in.Status
	task.Priority = in.Priority
	task.Project = in.Project
	task.Context = in.Context
	task.Tags = in.Tags
	task.DueAt = in.DueAt
	task.DeferAt = in.DeferAt
	task.Flagged = in.Flagged

	if err := s.store.UpdateTask(task); err != nil {
		return nil, storeErr(err)
	}

	s.record("task.update", in, id)
	return task, nil
}

// SetTaskStatus moves a task to a new status.
func (s *Service) SetTaskStatus(id string, status models.TaskStatus) (*models.Task, error) {
	status = models.TaskStatus(strings.ToLower(string(status)))
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	task, err := s.store.SetTaskStatus(id, status)
	if err != nil {
		return nil, storeErr(err)
	}

	s.record("task.status", map[string]string{"task_id": id, "status": string(status)}, id)
	return task, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(id string) error {
	if err := s.store.DeleteTask(id); err != nil {
		return storeErr(err)
	}
	s.record("task.delete", map[string]string{"task_id": id}, id)
	return nil
}

// --- Perspective Operations ---

// ListPerspectives returns the built-in perspectives followed by the
// user-defined ones.
func (s *Service) ListPerspectives() ([]models.Perspective, error) {
	stored, err := s.store.ListPerspectives()
	if err != nil {
		return nil, err
	}
	return append(perspective.BuiltIns(), stored...), nil
}

// GetPerspective resolves a built-in or user-defined perspective.
func (s *Service) GetPerspective(id string) (*models.Perspective, error) {
	if perspective.IsBuiltInID(id) {
		p, ok := perspective.BuiltIn(id)
		if !ok {
			return nil, ErrNotFound
		}
		return &p, nil
	}

	p, err := s.store.GetPerspective(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// normalizePerspective fills unset defaults and validates p.
func normalizePerspective(p *models.Perspective) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Filter.Logic == "" {
		p.Filter.Logic = models.LogicAnd
	}
	if p.Filter.Conditions == nil {
		p.Filter.Conditions = []models.FilterCondition{}
	}
	if p.Sort.Field == "" {
		p.Sort.Field = models.SortCreated
	}
	if p.Sort.Direction == "" {
		p.Sort.Direction = models.Ascending
	}
	if p.Group == "" {
		p.Group = models.GroupNone
	}
	return perspective.Validate(*p)
}

// CreatePerspective saves a new user-defined perspective.
func (s *Service) CreatePerspective(p models.Perspective) (*models.Perspective, error) {
	if perspective.IsBuiltInID(p.ID) {
		return nil, ErrReadOnly
	}
	if err := normalizePerspective(&p); err != nil {
		return nil, err
	}
	if err := s.store.CreatePerspective(&p); err != nil {
		return nil, err
	}

	s.record("perspective.create", p.Filter, p.ID)
	return &p, nil
}

// UpdatePerspective replaces a user-defined perspective.
func (s *Service) UpdatePerspective(id string, p models.Perspective) (*models.Perspective, error) {
	if perspective.IsBuiltInID(id) {
		return nil, ErrReadOnly
	}
	p.ID = id
	if err := normalizePerspective(&p); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePerspective(&p); err != nil {
		return nil, storeErr(err)
	}

	s.record("perspective.update", p.Filter, id)
	return s.GetPerspective(id)
}

// DeletePerspective removes a user-defined perspective.
func (s *Service) DeletePerspective(id string) error {
	if perspective.IsBuiltInID(id) {
		return ErrReadOnly
	}
	if err := s.store.DeletePerspective(id); err != nil {
		return storeErr(err)
	}
	s.record("perspective.delete", map[string]string{"perspective_id": id}, id)
	return nil
}

// ViewOptions parameterize how a view is rendered.
type ViewOptions struct {
	// Now anchors date-relative rules. Zero means the service clock.
	Now time.Time
	// Query narrows the result to tasks whose title or notes contain it.
	Query string
	// Group overrides the perspective's group key when set.
	Group models.GroupKey
}

func (s *Service) now(opts ViewOptions) time.Time {
	if opts.Now.IsZero() {
		return s.clock()
	}
	return opts.Now
}

// PerspectiveTasks returns the ordered tasks a perspective shows.
func (s *Service) PerspectiveTasks(id string, opts ViewOptions) ([]models.Task, error) {
	p, err := s.GetPerspective(id)
	if err != nil {
		return nil, err
	}
	return s.view(*p, opts)
}

// PerspectiveGroups returns a perspective's tasks bucketed by its group key.
func (s *Service) PerspectiveGroups(id string, opts ViewOptions) ([]perspective.Group, error) {
	p, err := s.GetPerspective(id)
	if err != nil {
		return nil, err
	}
	return s.groups(*p, opts)
}

func (s *Service) view(p models.Perspective, opts ViewOptions) ([]models.Task, error) {
	tasks, err := s.store.ListTasks()
	if err != nil {
		return nil, err
	}
	return perspective.Search(perspective.Apply(p, tasks, s.now(opts)), opts.Query), nil
}

func (s *Service) groups(p models.Perspective, opts ViewOptions) ([]perspective.Group, error) {
	if opts.Group != "" {
		p.Group = opts.Group
	}
	if err := perspective.Validate(withName(p)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	ordered, err := s.view(p, opts)
	if err != nil {
		return nil, err
	}
	return perspective.GroupTasks(ordered, p.Group, s.now(opts)), nil
}

// withName lets built-in and board perspectives, which need no name to be
// rendered, pass validation of the remaining fields.
func withName(p models.Perspective) models.Perspective {
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Predicate != "" {
		p.Filter.Logic = models.LogicAnd
	}
	return p
}

// --- Board Operations ---

// ListBoards returns every board.
func (s *Service) ListBoards() ([]models.Board, error) {
	return s.store.ListBoards()
}

// GetBoard retrieves a board by ID.
func (s *Service) GetBoard(id string) (*models.Board, error) {
	b, err := s.store.GetBoard(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

// CreateBoard saves a new board.
func (s *Service) CreateBoard(b models.Board) (*models.Board, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Value = strings.TrimSpace(b.Value)
	b.Kind = models.BoardKind(strings.ToLower(string(b.Kind)))
	switch b.Kind {
	case models.BoardContext, models.BoardProject, models.BoardTag:
	default:
		return nil, fmt.Errorf("%w: unknown board kind %q", ErrInvalid, b.Kind)
	}
	if b.Value == "" {
		return nil, fmt.Errorf("%w: board value is required", ErrInvalid)
	}
	if b.Name == "" {
		b.Name = b.Value
	}

	if err := s.store.CreateBoard(&b); err != nil {
		return nil, err
	}

	s.record("board.create", b, b.ID)
	return &b, nil
}

// DeleteBoard removes a board.
func (s *Service) DeleteBoard(id string) error {
	if err := s.store.DeleteBoard(id); err != nil {
		return storeErr(err)
	}
	s.record("board.delete", map[string]string{"board_id": id}, id)
	return nil
}

// BoardTasks returns the ordered tasks a board shows.
func (s *Service) BoardTasks(id string, opts ViewOptions) ([]models.Task, error) {
	b, err := s.GetBoard(id)
	if err != nil {
		return nil, err
	}
	return s.view(perspective.BoardPerspective(*b), opts)
}

// BoardGroups returns a board's tasks grouped by opts.Group.
func (s *Service) BoardGroups(id string, opts ViewOptions) ([]perspective.Group, error) {
	b, err := s.GetBoard(id)
	if err != nil {
		return nil, err
	}
	return s.groups(perspective.BoardPerspective(*b), opts)
}

// --- Badges and journal ---

// Badges returns badge counts. The coordinator's latest result is served
// only while it covers the newest requested generation and was computed
// on the current day; otherwise the counts are computed synchronously.
func (s *Service) Badges(ctx context.Context) (*recompute.Result, error) {
	now := s.clock()
	var gen uint64
	if s.recompute != nil {
		gen = s.recompute.Stats().Requested
		if r, ok := s.recompute.Latest(); ok {
			if r.Generation == gen && sameDay(r.ComputedAt, now) {
				return r, nil
			}
			if r.Generation == gen {
				// Date-relative counts went stale at midnight.
				gen = s.recompute.Request()
			}
		}
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &recompute.Result{Generation: gen, Counts: recompute.CountsNow(snap, now), ComputedAt: now}, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ListChanges returns the newest journal entries.
func (s *Service) ListChanges(limit int) ([]models.Change, error) {
	return s.store.ListChanges(limit)
}

func storeErr(err error) error {
	if err == store.ErrNotFound {
		return ErrNotFound
	}
	return err
}
