// Package stub is an in-memory reference implementation of the comparison
// service HTTP surface, used for local development and end-to-end tests.
//
// Jobs move through their lifecycle on the server's clock: PENDING for a
// while, then PROCESSING with rising progress, then COMPLETED at 100%. A job
// whose upload is not an image becomes FAILED instead of PROCESSING. Reads
// never change a job.
package stub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/constants"
)

// Options configures a Server.
type Options struct {
	Host string
	Port int
	// Catalog replaces the seeded celebrity catalog when not nil.
	Catalog []compare.Celebrity
	// AllowedOrigins receive CORS headers in addition to localhost.
	AllowedOrigins []string
	// Clock stamps created_at and drives job progress; defaults to the real clock.
	Clock clockwork.Clock
	// PendingFor is how long a job stays PENDING.
	PendingFor time.Duration
	// CompleteAfter is the time from creation until a job is COMPLETED.
	CompleteAfter time.Duration
	Logger        *slog.Logger
	// Quiet disables the request logger middleware.
	Quiet bool
}

// Server represents the stub comparison service
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	jobs       *JobManager
	catalog    []compare.Celebrity
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer creates a new stub server
func NewServer(opts Options) *Server {
	r := chi.NewRouter()

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = SeedCatalog()
	}

	s := &Server{
		router:  r,
		jobs:    NewJobManager(clock, opts.PendingFor, opts.CompleteAfter),
		catalog: catalog,
		clock:   clock,
		logger:  logger,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if !opts.Quiet {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(constants.StubRequestTimeout))
	r.Use(CORS(opts.AllowedOrigins))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("starting stub server", "addr", s.httpServer.Addr, "celebrities", len(s.catalog))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down stub server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
