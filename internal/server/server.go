// Package server exposes the determinant and RREF computations over HTTP.
//
// Routes:
//
//	POST /api/determinant  {"matrix": [[...]]} -> {"result": <number>}
//	POST /api/rref         {"matrix": [[...]]} -> {"result": [[...]]}
//	GET  /healthz          -> ok
//	GET  /metrics          -> Prometheus exposition
//
// Failures answer {"error": "..."} with a 4xx status. Results are rounded to
// the configured precision; the engine itself never rounds.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/matcalc/internal/config"
	"github.com/katalvlaran/matcalc/matrix"
)

const readHeaderTimeout = 5 * time.Second

// Server serves the HTTP API.
type Server struct {
	cfg     config.Config
	log     logr.Logger
	opts    []matrix.Option
	metrics *metrics
	handler http.Handler
}

// New builds a Server. Metrics are registered on reg and exposed from it;
// a nil reg gets a private registry.
func New(cfg config.Config, log logr.Logger, reg *prometheus.Registry) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		log:     log.WithName("server"),
		opts:    cfg.EngineOptions(),
		metrics: m,
	}

	mux := http.NewServeMux()
	mux.Handle("/api/determinant", s.operation(matrix.OpDeterminant))
	mux.Handle("/api/rref", s.operation(matrix.OpRREF))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.handler = mux

	return s, nil
}

// Handler returns the root handler, for mounting or tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on cfg.Listen until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			// In-flight requests outlive ctx until Shutdown drains them.
			return logr.NewContext(context.WithoutCancel(ctx), s.log)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Serving", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
