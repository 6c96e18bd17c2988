// Package server implements the xdsmgen HTTP API.
//
// # Endpoints
//
//	GET  /healthz              liveness and version
//	POST /api/v1/diagrams      render viewer data (?format=html|json|tex|pdf|dot|svg)
//	POST /api/v1/validate      check viewer data against the JSON Schema
//
// A render request body is
//
//	{"data": <viewer data>, "options": <pipeline.Options>}
//
// and the response is the artifact itself, with X-Document-ID and
// X-Cache (hit or miss) headers. Errors are JSON objects with a code and a
// message; the status follows the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/xdsmgen/pkg/pipeline"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

// DefaultMaxBodySize bounds request bodies.
const DefaultMaxBodySize int64 = 16 << 20

// Config configures a Server.
type Config struct {
	Addr        string
	MaxBodySize int64
	// RenderTimeout bounds a single render, including pdflatex and Graphviz.
	RenderTimeout time.Duration
}

// Server serves the API over one pipeline runner.
type Server struct {
	cfg       Config
	runner    *pipeline.Runner
	validator *viewer.Validator
	logger    *log.Logger
	router    chi.Router
}

// New creates a server. The runner's cache is shared by all requests.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) (*Server, error) {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	validator, err := viewer.NewValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		runner:    runner,
		validator: validator,
		logger:    logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/diagrams", s.handleRender)
		r.Post("/validate", s.handleValidate)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
