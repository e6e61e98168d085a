// Package server exposes the application services as an HTTP JSON API.
// Handlers only decode requests, call a service and encode the result,
// every rule lives in the app layer.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/taskhub/taskhub/internal/app/dashboard"
	"github.com/taskhub/taskhub/internal/app/report"
	"github.com/taskhub/taskhub/internal/app/taskchecklist"
	"github.com/taskhub/taskhub/internal/app/taskcreate"
	"github.com/taskhub/taskhub/internal/app/tasklist"
	"github.com/taskhub/taskhub/internal/app/taskremove"
	"github.com/taskhub/taskhub/internal/app/taskstatus"
	"github.com/taskhub/taskhub/internal/app/taskupdate"
	"github.com/taskhub/taskhub/internal/app/userauth"
	"github.com/taskhub/taskhub/internal/app/userlist"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/log"
)

// ServerConfig is the configuration for the HTTP server.
type ServerConfig struct {
	ListenAddr    string
	Authenticator *auth.Authenticator
	CORSOrigins   []string

	UserAuthService      *userauth.Service
	UserListService      *userlist.Service
	TaskCreateService    *taskcreate.Service
	TaskListService      *tasklist.Service
	TaskUpdateService    *taskupdate.Service
	TaskRemoveService    *taskremove.Service
	TaskStatusService    *taskstatus.Service
	TaskChecklistService *taskchecklist.Service
	DashboardService     *dashboard.Service
	ReportService        *report.Service

	Logger log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Authenticator == nil {
		return fmt.Errorf("authenticator is required")
	}
	switch {
	case c.UserAuthService == nil:
		return fmt.Errorf("user auth service is required")
	case c.UserListService == nil:
		return fmt.Errorf("user list service is required")
	case c.TaskCreateService == nil:
		return fmt.Errorf("task create service is required")
	case c.TaskListService == nil:
		return fmt.Errorf("task list service is required")
	case c.TaskUpdateService == nil:
		return fmt.Errorf("task update service is required")
	case c.TaskRemoveService == nil:
		return fmt.Errorf("task remove service is required")
	case c.TaskStatusService == nil:
		return fmt.Errorf("task status service is required")
	case c.TaskChecklistService == nil:
		return fmt.Errorf("task checklist service is required")
	case c.DashboardService == nil:
		return fmt.Errorf("dashboard service is required")
	case c.ReportService == nil:
		return fmt.Errorf("report service is required")
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "server.HTTP"})
	return nil
}

// Server is the HTTP API server.
type Server struct {
	cfg    ServerConfig
	server *http.Server
	logger log.Logger
}

// NewServer creates a new HTTP server with all the API routes registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Public auth routes.
	api.HandleFunc("/auth/register", s.handleRegister()).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin()).Methods(http.MethodPost)

	// Everything else requires a valid token.
	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/auth/profile", s.handleProfile()).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile", s.handleProfileUpdate()).Methods(http.MethodPut)

	authed.HandleFunc("/users", s.handleUserList()).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", s.handleUserGet()).Methods(http.MethodGet)

	authed.HandleFunc("/tasks", s.handleTaskList()).Methods(http.MethodGet)
	authed.HandleFunc("/tasks", s.handleTaskCreate()).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/dashboard-data", s.handleDashboard()).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/user-dashboard-data", s.handleUserDashboard()).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", s.handleTaskGet()).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", s.handleTaskUpdate()).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id}", s.handleTaskDelete()).Methods(http.MethodDelete)
	authed.HandleFunc("/tasks/{id}/status", s.handleTaskStatus()).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id}/todo", s.handleTaskChecklist()).Methods(http.MethodPut)

	authed.HandleFunc("/reports/export/tasks", s.handleExportTasks()).Methods(http.MethodGet)
	authed.HandleFunc("/reports/export/users", s.handleExportUsers()).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	s.server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: corsHandler.Handler(router),
	}

	return s, nil
}

// Handler returns the server's root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the server and blocks until ctx is cancelled. It performs a
// graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Infof("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
