// Package server exposes the query pipeline over HTTP. All query responses
// are HTTP 200 with a JSON body; failures are reported inside the body so
// clients never branch on status codes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/logging"
	"github.com/askdb/askdb/internal/pipeline"
)

// QueryExecutor runs one natural-language query end to end. The pipeline
// satisfies it; tests substitute a stub.
type QueryExecutor interface {
	Execute(ctx context.Context, req pipeline.Request) pipeline.Response
}

// Server serves the query API.
type Server struct {
	executor QueryExecutor
	cfg      config.ServerConfig
	logger   *logging.Logger
}

// New constructs a server around a query executor.
func New(executor QueryExecutor, cfg config.ServerConfig) *Server {
	return &Server{
		executor: executor,
		cfg:      cfg,
		logger:   logging.GetLogger(),
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/export", s.handleExport)
	})

	return r
}

// Serve runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	readTimeout, err := time.ParseDuration(s.cfg.ReadTimeout)
	if err != nil {
		return fmt.Errorf("invalid read timeout %q: %w", s.cfg.ReadTimeout, err)
	}

	writeTimeout, err := time.ParseDuration(s.cfg.WriteTimeout)
	if err != nil {
		return fmt.Errorf("invalid write timeout %q: %w", s.cfg.WriteTimeout, err)
	}

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	s.logger.WithField("addr", s.cfg.Addr).Info("starting query API server")

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down query API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// logRequests records one line per request at info level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request completed")
	})
}
