// Package server implements the atlas HTTP API served by `atlas serve`.
//
// Every request loads its graph document into a fresh engine, so no engine
// is ever shared between goroutines. Layouts go through the same cached
// [pipeline.Runner] as the CLI.
//
// Routes:
//
//	GET  /healthz
//	GET  /metrics
//	POST /v1/layout/{algorithm}     body: graph      query: root, refresh
//	POST /v1/communities            body: graph
//	POST /v1/query/nearest          body: query request
//	POST /v1/query/radius           body: query request
//	POST /v1/query/rect             body: query request
//	POST /v1/preview/{algorithm}    body: graph      query: root, format, labels
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.Config
	logger   *log.Logger
	gatherer prometheus.Gatherer
}

// New returns a server. gatherer backs /metrics; nil serves the default
// Prometheus registry.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{runner: runner, cfg: cfg, logger: logger, gatherer: gatherer}
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout/{algorithm}", s.handleLayout)
		r.Post("/communities", s.handleCommunities)
		r.Route("/query", func(r chi.Router) {
			r.Post("/nearest", s.handleNearest)
			r.Post("/radius", s.handleRadius)
			r.Post("/rect", s.handleRect)
		})
		r.Post("/preview/{algorithm}", s.handlePreview)
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
