// Package store provides SQLite-backed persistence for focus.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides access to the focus SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'inbox',
		priority TEXT NOT NULL DEFAULT 'medium',
		project TEXT NOT NULL DEFAULT '',
		context TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		due_at DATETIME,
		defer_at DATETIME,
		flagged INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS perspectives (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		filter TEXT NOT NULL,
		sort_field TEXT NOT NULL,
		sort_direction TEXT NOT NULL,
		group_key TEXT NOT NULL,
		show_completed INTEGER NOT NULL DEFAULT 0,
		show_deferred INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS changes (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		entity_id TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_changes_timestamp ON changes(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// --- Task Operations ---

// NewTask holds the caller-supplied fields of a task to create.
type NewTask struct {
	Title    string
	Notes    string
	Status   models.TaskStatus
	Priority models.Priority
	Project  string
	Context  string
	Tags     []string
	DueAt    *time.Time
	DeferAt  *time.Time
	Flagged  bool
}

const taskColumns = `id, title, notes, status, priority, project, context, tags, due_at, defer_at, flagged, created_at, updated_at, completed_at`

// CreateTask inserts a new task.
func (s *Store) CreateTask(in NewTask) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Notes:     in.Notes,
		Status:    in.Status,
		Priority:  in.Priority,
		Project:   in.Project,
		Context:   in.Context,
		Tags:      in.Tags,
		DueAt:     in.DueAt,
		DeferAt:   in.DeferAt,
		Flagged:   in.Flagged,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusInbox
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == models.TaskStatusCompleted {
		task.CompletedAt = &now
	}

	tagsJSON, err := json.Marshal(nonNilTags(task.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Notes, task.Status, task.Priority, task.Project, task.Context,
		string(tagsJSON), task.DueAt, task.DeferAt, task.Flagged, task.CreatedAt, task.UpdatedAt, task.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks in creation order.
func (s *Store) ListTasks() ([]models.Task, error) {
	return listTasks(s.db)
}

func listTasks(q queryer) ([]models.Task, error) {
	rows, err := q.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask overwrites the mutable fields of an existing task. It keeps
// CompletedAt in step with the status.
func (s *Store) UpdateTask(task *models.Task) error {
	existing, err := s.GetTask(task.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	now := time.Now().UTC()
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = now
	task.CompletedAt = completedAt(existing, task.Status, now)

	tagsJSON, err := json.Marshal(nonNilTags(task.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, notes = ?, status = ?, priority = ?, project = ?, context = ?, tags = ?,
		 due_at = ?, defer_at = ?, flagged = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		task.Title, task.Notes, task.Status, task.Priority, task.Project, task.Context, string(tagsJSON),
		task.DueAt, task.DeferAt, task.Flagged, task.UpdatedAt, task.CompletedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// SetTaskStatus moves a task to status and returns the updated task.
func (s *Store) SetTaskStatus(id string, status models.TaskStatus) (*models.Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	task.Status = status
	if err := s.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	return s.deleteByID("tasks", id)
}

func completedAt(existing *models.Task, status models.TaskStatus, now time.Time) *time.Time {
	if status != models.TaskStatusCompleted {
		return nil
	}
	if existing.Status == models.TaskStatusCompleted && existing.CompletedAt != nil {
		return existing.CompletedAt
	}
	return &now
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var task models.Task
	var tagsJSON string
	var dueAt, deferAt, completedAt sql.NullTime

	err := row.Scan(&task.ID, &task.Title, &task.Notes, &task.Status, &task.Priority, &task.Project, &task.Context,
		&tagsJSON, &dueAt, &deferAt, &task.Flagged, &task.CreatedAt, &task.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &task.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(task.Tags) == 0 {
		task.Tags = nil
	}
	task.DueAt = nullTime(dueAt)
	task.DeferAt = nullTime(deferAt)
	task.CompletedAt = nullTime(completedAt)
	return &task, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// --- Perspective Operations ---

const perspectiveColumns = `id, name, icon, color, filter, sort_field, sort_direction, group_key, show_completed, show_deferred, created_at, updated_at`

// CreatePerspective inserts a user-defined perspective. The ID is assigned
// here unless the caller supplied one (perspective import keeps ids).
func (s *Store) CreatePerspective(p *models.Perspective) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.IsBuiltIn = false
	p.Predicate = ""
	p.CreatedAt = now
	p.UpdatedAt = now

	filterJSON, err := json.Marshal(p.Filter)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO perspectives (`+perspectiveColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Icon, p.Color, string(filterJSON), p.Sort.Field, p.Sort.Direction, p.Group,
		p.ShowCompleted, p.ShowDeferred, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert perspective: %w", err)
	}
	return nil
}

// GetPerspective retrieves a user-defined perspective by ID.
func (s *Store) GetPerspective(id string) (*models.Perspective, error) {
	row := s.db.QueryRow(`SELECT `+perspectiveColumns+` FROM perspectives WHERE id = ?`, id)
	p, err := scanPerspective(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query perspective: %w", err)
	}
	return p, nil
}

// ListPerspectives returns every user-defined perspective in creation order.
func (s *Store) ListPerspectives() ([]models.Perspective, error) {
	return listPerspectives(s.db)
}

func listPerspectives(q queryer) ([]models.Perspective, error) {
	rows, err := q.Query(`SELECT ` + perspectiveColumns + ` FROM perspectives ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query perspectives: %w", err)
	}
	defer rows.Close()

	var out []models.Perspective
	for rows.Next() {
		p, err := scanPerspective(rows)
		if err != nil {
			return nil, fmt.Errorf("scan perspective: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdatePerspective overwrites an existing user-defined perspective.
func (s *Store) UpdatePerspective(p *models.Perspective) error {
	filterJSON, err := json.Marshal(p.Filter)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}

	p.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(
		`UPDATE perspectives SET name = ?, icon = ?, color = ?, filter = ?, sort_field = ?, sort_direction = ?,
		 group_key = ?, show_completed = ?, show_deferred = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Icon, p.Color, string(filterJSON), p.Sort.Field, p.Sort.Direction,
		p.Group, p.ShowCompleted, p.ShowDeferred, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update perspective: %w", err)
	}
	if err := requireOneRow(result); err != nil {
		return err
	}

	current, err := s.GetPerspective(p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = current.CreatedAt
	return nil
}

// DeletePerspective removes a user-defined perspective.
func (s *Store) DeletePerspective(id string) error {
	return s.deleteByID("perspectives", id)
}

func scanPerspective(row scanner) (*models.Perspective, error) {
	var p models.Perspective
	var filterJSON string
	err := row.Scan(&p.ID, &p.Name, &p.Icon, &p.Color, &filterJSON, &p.Sort.Field, &p.Sort.Direction, &p.Group,
		&p.ShowCompleted, &p.ShowDeferred, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(filterJSON), &p.Filter); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return &p, nil
}

// --- Board Operations ---

// CreateBoard inserts a board.
func (s *Store) CreateBoard(b *models.Board) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO boards (id, name, kind, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Kind, b.Value, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	return nil
}

// GetBoard retrieves a board by ID.
func (s *Store) GetBoard(id string) (*models.Board, error) {
	var b models.Board
	err := s.db.QueryRow(
		`SELECT id, name, kind, value, created_at FROM boards WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Kind, &b.Value, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query board: %w", err)
	}
	return &b, nil
}

// ListBoards returns every board in creation order.
func (s *Store) ListBoards() ([]models.Board, error) {
	return listBoards(s.db)
}

func listBoards(q queryer) ([]models.Board, error) {
	rows, err := q.Query(`SELECT id, name, kind, value, created_at FROM boards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query boards: %w", err)
	}
	defer rows.Close()

	var boards []models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Name, &b.Kind, &b.Value, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// DeleteBoard removes a board.
func (s *Store) DeleteBoard(id string) error {
	return s.deleteByID("boards", id)
}

// --- Snapshot ---

// Snapshot is a consistent read of everything the perspective engine needs.
type Snapshot struct {
	Tasks        []models.Task
	Perspectives []models.Perspective
	Boards       []models.Board
}

// Snapshot reads tasks, perspectives and boards in one transaction.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	snap := &Snapshot{}
	if snap.Tasks, err = listTasks(tx); err != nil {
		return nil, err
	}
	if snap.Perspectives, err = listPerspectives(tx); err != nil {
		return nil, err
	}
	if snap.Boards, err = listBoards(tx); err != nil {
		return nil, err
	}
	return snap, nil
}

// --- Change Journal ---

// WriteChange appends a journal record.
func (s *Store) WriteChange(action, inputsHash, entityID string) (*models.Change, error) {
	change := &models.Change{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO changes (id, action, inputs_hash, entity_id, timestamp) VALUES (?, ?, ?, ?, ?)`,
		change.ID, change.Action, change.InputsHash, change.EntityID, change.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert change: %w", err)
	}
	return change, nil
}

// ListChanges returns the most recent journal records, newest first.
func (s *Store) ListChanges(limit int) ([]models.Change, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, action, inputs_hash, entity_id, timestamp FROM changes ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var c models.Change
		var entityID sql.NullString
		if err := rows.Scan(&c.ID, &c.Action, &c.InputsHash, &entityID, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		if entityID.Valid {
			c.EntityID = entityID.String
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// --- Helpers ---

func (s *Store) deleteByID(table, id string) error {
	result, err := s.db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
