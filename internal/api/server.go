package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
)

// Version is reported by the health endpoint. It is overridden at build time.
var Version = "dev"

// Server provides the HTTP API for focus.
type Server struct {
	service *Service
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, addr string) *Server {
	return &Server{
		service: service,
		addr:    addr,
	}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Task endpoints
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)

	// Perspective endpoints
	mux.HandleFunc("/perspectives", s.handlePerspectives)
	mux.HandleFunc("/perspectives/", s.handlePerspectiveByID)

	// Board endpoints
	mux.HandleFunc("/boards", s.handleBoards)
	mux.HandleFunc("/boards/", s.handleBoardByID)

	mux.HandleFunc("/badges", s.handleBadges)
	mux.HandleFunc("/changes", s.handleChanges)

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting focus daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := s.service.Ping(ctx); err != nil {
		health.OK = false
		health.DB = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, health)
}

// splitID splits "/prefix/{id}/{action}" into id and action.
func splitID(path, prefix string) (string, string) {
	rest := strings.TrimPrefix(path, prefix)
	id, action, _ := strings.Cut(rest, "/")
	return id, action
}

// --- Task Handlers ---

// handleTasks handles POST /tasks and GET /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var in TaskInput
		if !decode(w, r, &in) {
			return
		}
		task, err := s.service.CreateTask(in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	case http.MethodGet:
		tasks, err := s.service.ListTasks()
		if err != nil {
			writeError(w, err)
			return
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		writeJSON(w, http.StatusOK, tasks)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// handleTaskByID handles /tasks/{id} and /tasks/{id}/status
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitID(r.URL.Path, "/tasks/")
	if id == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		task, err := s.service.GetTask(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	case action == "" && r.Method == http.MethodPut:
		var in TaskInput
		if !decode(w, r, &in) {
			return
		}
		task, err := s.service.UpdateTask(id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	case action == "" && r.Method == http.MethodDelete:
		if err := s.service.DeleteTask(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "status" && r.Method == http.MethodPost:
		var req statusRequest
		if !decode(w, r, &req) {
			return
		}
		task, err := s.service.SetTaskStatus(id, req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// --- Perspective Handlers ---

// handlePerspectives handles POST /perspectives and GET /perspectives
func (s *Server) handlePerspectives(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var p models.Perspective
		if !decode(w, r, &p) {
			return
		}
		created, err := s.service.CreatePerspective(p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		list, err := s.service.ListPerspectives()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePerspectiveByID handles /perspectives/{id}[/tasks|/groups]
func (s *Server) handlePerspectiveByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitID(r.URL.Path, "/perspectives/")
	if id == "" {
		http.Error(w, "perspective id required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		p, err := s.service.GetPerspective(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case action == "" && r.Method == http.MethodPut:
		var p models.Perspective
		if !decode(w, r, &p) {
			return
		}
		updated, err := s.service.UpdatePerspective(id, p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case action == "" && r.Method == http.MethodDelete:
		if err := s.service.DeletePerspective(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "tasks" && r.Method == http.MethodGet:
		opts, ok := viewOptions(w, r)
		if !ok {
			return
		}
		tasks, err := s.service.PerspectiveTasks(id, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	case action == "groups" && r.Method == http.MethodGet:
		opts, ok := viewOptions(w, r)
		if !ok {
			return
		}
		groups, err := s.service.PerspectiveGroups(id, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// --- Board Handlers ---

// handleBoards handles POST /boards and GET /boards
func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var b models.Board
		if !decode(w, r, &b) {
			return
		}
		created, err := s.service.CreateBoard(b)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		boards, err := s.service.ListBoards()
		if err != nil {
			writeError(w, err)
			return
		}
		if boards == nil {
			boards = []models.Board{}
		}
		writeJSON(w, http.StatusOK, boards)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBoardByID handles /boards/{id}[/tasks|/groups]
func (s *Server) handleBoardByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitID(r.URL.Path, "/boards/")
	if id == "" {
		http.Error(w, "board id required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		b, err := s.service.GetBoard(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case action == "" && r.Method == http.MethodDelete:
		if err := s.service.DeleteBoard(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "tasks" && r.Method == http.MethodGet:
		opts, ok := viewOptions(w, r)
		if !ok {
			return
		}
		tasks, err := s.service.BoardTasks(id, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	case action == "groups" && r.Method == http.MethodGet:
		opts, ok := viewOptions(w, r)
		if !ok {
			return
		}
		groups, err := s.service.BoardGroups(id, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// --- Badges and journal ---

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := s.service.Badges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	changes, err := s.service.ListChanges(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if changes == nil {
		changes = []models.Change{}
	}
	writeJSON(w, http.StatusOK, changes)
}

// --- helpers ---

// viewOptions reads now, q and by from the query string.
func viewOptions(w http.ResponseWriter, r *http.Request) (ViewOptions, bool) {
	query := r.URL.Query()
	opts := ViewOptions{
		Query: query.Get("q"),
		Group: models.GroupKey(query.Get("by")),
	}
	if raw := query.Get("now"); raw != "" {
		now, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "now must be RFC3339", http.StatusBadRequest)
			return opts, false
		}
		opts.Now = now
	}
	return opts, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalid), errors.Is(err, perspective.ErrInvalidPerspective):
		status = http.StatusBadRequest
	case errors.Is(err, ErrReadOnly):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
