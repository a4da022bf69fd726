// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz             liveness and build version
//	POST   /v1/render           solve the request body and return one artifact
//	POST   /v1/layouts          solve the request body and archive the layout
//	GET    /v1/layouts          list recently archived layouts
//	GET    /v1/layouts/{id}     fetch an archived layout (JSON, or ?format=)
//	DELETE /v1/layouts/{id}     remove an archived layout
//
// Request bodies are layout descriptions. Solve options are query
// parameters: width, height, set (repeatable, "name" or "name=false"),
// style, groups, constraints, soft, scale and strict.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/store"
)

const (
	// DefaultMaxBody bounds the size of a layout description.
	DefaultMaxBody = 1 << 20

	// DefaultTimeout bounds the handling of one request.
	DefaultTimeout = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Server routes HTTP requests to a pipeline runner and a layout store.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	limiter *rate.Limiter
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBody limits request bodies to n bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithTimeout bounds request handling.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSolveLimit allows rps solves per second with the given burst. Excess
// requests get 429. Reads of archived layouts are not limited.
func WithSolveLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// New creates a server. A nil store means an in-memory one.
func New(runner *pipeline.Runner, st store.Store, opts ...Option) *Server {
	if st == nil {
		st = store.NewMemory()
	}
	s := &Server{
		runner:  runner,
		store:   st,
		logger:  log.Default(),
		maxBody: DefaultMaxBody,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.With(s.limitSolves).Post("/render", s.handleRender)
		r.Route("/layouts", func(r chi.Router) {
			r.With(s.limitSolves).Post("/", s.handleCreateLayout)
			r.Get("/", s.handleListLayouts)
			r.Get("/{id}", s.handleGetLayout)
			r.Delete("/{id}", s.handleDeleteLayout)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
