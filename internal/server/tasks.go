package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/timeslice/pkg/store"
)

// =============================================================================
// Categories
// =============================================================================

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.runner.Store.Categories(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handlePutCategories(w http.ResponseWriter, r *http.Request) {
	var cats []string
	if err := decodeJSON(r, &cats); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	if err := s.runner.Store.SetCategories(r.Context(), cats); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.handleGetCategories(w, r)
}

// =============================================================================
// Tasks
// =============================================================================

// TaskRequest is the body of POST /api/tasks and POST /api/tasks/{id}/move.
type TaskRequest struct {
	Text     string `json:"text,omitempty"`
	Quadrant string `json:"quadrant"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var q store.Quadrant
	if raw := r.URL.Query().Get("quadrant"); raw != "" {
		parsed, err := store.ParseQuadrant(raw)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		q = parsed
	}
	tasks, err := s.runner.Store.Tasks(r.Context(), q)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if tasks == nil {
		tasks = []store.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	q, err := store.ParseQuadrant(req.Quadrant)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	task, err := s.runner.Store.AddTask(r.Context(), req.Text, q)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Store.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.runner.Store.ToggleTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	q, err := store.ParseQuadrant(req.Quadrant)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	task, err := s.runner.Store.MoveTask(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
