// Package server exposes the time records, statistics, charts and tasks over
// a JSON HTTP API.
//
// Routes:
//
//	GET    /api/days/{date}              one day's record
//	PUT    /api/days/{date}              replace a day ({"work": "1h30m", ...})
//	DELETE /api/days/{date}              remove a day
//	GET    /api/stats/{mode}/{date}      aggregate of a period
//	GET    /api/charts/{mode}/{date}.{format}
//	GET    /api/categories               category list
//	PUT    /api/categories               replace the category list
//	GET    /api/tasks[?quadrant=Q1]      tasks
//	POST   /api/tasks                    add a task
//	DELETE /api/tasks/{id}
//	POST   /api/tasks/{id}/toggle
//	POST   /api/tasks/{id}/move          ({"quadrant": "Q2"})
//	GET    /metrics                      prometheus, when configured
//	GET    /healthz
//
// Errors are returned as {"code": "...", "message": "..."}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/timeslice/pkg/pipeline"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Chart holds the annotation defaults for rendered charts.
	Chart ChartDefaults

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Server is the HTTP API.
type Server struct {
	config Config
	runner *pipeline.Runner
	router chi.Router
	logger *log.Logger
	now    func() time.Time
}

// New creates a server over runner. Routes are registered immediately, so
// Handler can be used without calling Run.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		config: cfg,
		runner: runner,
		router: chi.NewRouter(),
		logger: logger.WithPrefix("http"),
		now:    time.Now,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))
	r.Use(hooksMiddleware)

	r.Get("/healthz", s.handleHealth)
	if s.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.config.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/days/{date}", s.handleGetDay)
		r.Put("/days/{date}", s.handlePutDay)
		r.Delete("/days/{date}", s.handleDeleteDay)
		r.Get("/stats/{mode}/{date}", s.handleStats)
		// Day keys contain dots, so the format suffix is split off by hand.
		r.Get("/charts/{mode}/{file}", s.handleChart)

		r.Get("/categories", s.handleGetCategories)
		r.Put("/categories", s.handlePutCategories)

		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleAddTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Post("/tasks/{id}/toggle", s.handleToggleTask)
		r.Post("/tasks/{id}/move", s.handleMoveTask)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed"})
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.runner.Store.Backend(),
	})
}
