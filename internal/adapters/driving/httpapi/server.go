// Package httpapi serves search over plain JSON HTTP, next to the health
// check, the Prometheus metrics and, when mounted, the MCP endpoint.
//
//	GET  /search?q=...&limit=N
//	POST /search {"query": "...", "limit": N}
//	GET  /stats
//	GET  /healthz
//	GET  /metrics
//	     /mcp
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/nova/internal/core/ports/driving"
	"github.com/custodia-labs/nova/internal/logger"
	"github.com/custodia-labs/nova/internal/metrics"
)

// ShutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

// ErrMissingSearchService is returned when the server has no search port.
var ErrMissingSearchService = errors.New("search service is required")

// Server is the HTTP front end.
type Server struct {
	search driving.SearchService
	index  driving.IndexService
	mcp    http.Handler
	mux    *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithIndex enables the /stats endpoint.
func WithIndex(index driving.IndexService) Option {
	return func(s *Server) { s.index = index }
}

// WithMCP mounts an MCP streamable HTTP handler at /mcp.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// New creates a server over search.
func New(search driving.SearchService, opts ...Option) (*Server, error) {
	if search == nil {
		return nil, ErrMissingSearchService
	}

	s := &Server{search: search, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("/search", s.handleSearch)
	s.mux.HandleFunc("/healthz", handleHealth)
	s.mux.Handle("/metrics", metrics.Handler())
	if s.index != nil {
		s.mux.HandleFunc("/stats", s.handleStats)
	}
	if s.mcp != nil {
		s.mux.Handle("/mcp", s.mcp)
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "ok")
}
