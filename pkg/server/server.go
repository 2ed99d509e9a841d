// Package server exposes the exploration pipeline over HTTP.
//
// The API mirrors the CLI: fetch metadata, lay out diagrams, and run
// queries, all backed by the same cached [pipeline.Runner]. Explored
// services are recorded in a [catalog.Store].
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odex-dev/odex/pkg/catalog"
	"github.com/odex-dev/odex/pkg/pipeline"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Options configures the server.
type Options struct {
	// Addr as accepted by net/http, e.g. ":8080".
	Addr string

	// Runner executes pipeline stages; required.
	Runner *pipeline.Runner

	// Catalog records explored services. A nil store defaults to an
	// in-memory catalog.
	Catalog catalog.Store

	// Logger for request and lifecycle logging.
	Logger *log.Logger
}

// Server is the odex HTTP API.
type Server struct {
	http    *http.Server
	runner  *pipeline.Runner
	catalog catalog.Store
	logger  *log.Logger
}

// New assembles the server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.NewMemoryStore()
	}

	s := &Server{
		runner:  opts.Runner,
		catalog: opts.Catalog,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/metadata", s.handleMetadata)
		r.Post("/layout", s.handleLayout)
		r.Post("/query", s.handleQuery)
		r.Get("/services", s.handleListServices)
		r.Delete("/services", s.handleDeleteService)
	})

	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
