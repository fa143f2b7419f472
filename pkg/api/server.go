// Package api serves link-community detection over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness and build information
//	POST /v1/communities   cluster an edge list, cut it and render artifacts
//	POST /v1/similarity    similarity of edge pairs within an edge list
//	GET  /metrics          Prometheus metrics, when enabled with WithMetrics
//
// Request bodies are JSON. /v1/communities also accepts a raw CSV edge list
// (Content-Type: text/csv) with the options passed as query parameters.
// Every response carries an X-Request-ID header. Cross-origin requests are
// allowed from the configured origins only.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ruliana/link-community/pkg/config"
	"github.com/ruliana/link-community/pkg/pipeline"
	"github.com/ruliana/link-community/pkg/slink"
)

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	cfg     config.Server
	cluster []slink.Option
	logger  *log.Logger
	metrics http.Handler
}

// New creates a server running requests through runner. Cluster options
// apply to every clustering request.
func New(runner *pipeline.Runner, cfg config.Server, logger *log.Logger, cluster ...slink.Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  runner,
		cfg:     cfg,
		cluster: cluster,
		logger:  logger,
	}
}

// WithMetrics serves h on GET /metrics.
func (s *Server) WithMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/communities", s.communities)
		r.Post("/similarity", s.similarity)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &statusError{status: http.StatusNotFound, msg: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &statusError{status: http.StatusMethodNotAllowed, msg: "method not allowed"})
	})
	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
