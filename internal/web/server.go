// Package web provides the HTTP server and handlers for the loan client
// upload service.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/config"
	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

// Pipeline is the upload-processing surface the handlers depend on.
type Pipeline interface {
	ProcessUpload(ctx context.Context, req ingest.Request) (*ingest.Report, error)
}

// Storage is the slice of the persistence layer the health check needs.
type Storage interface {
	Ping(ctx context.Context) error
}

// ClassifierStatus reports whether the external classifier is configured,
// without performing a live call.
type ClassifierStatus interface {
	Configured() bool
}

// Server is the HTTP server for the upload service.
type Server struct {
	pipeline   Pipeline
	storage    Storage
	classifier ClassifierStatus
	cfg        *config.Config
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a Server instance.
func NewServer(pipeline Pipeline, storage Storage, classifier ClassifierStatus, cfg *config.Config) *Server {
	s := &Server{
		pipeline:   pipeline,
		storage:    storage,
		classifier: classifier,
		cfg:        cfg,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/upload", s.handleUpload)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
