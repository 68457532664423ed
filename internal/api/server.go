// Package api exposes the pass lookup over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/seanssullivan/iss-spotter/internal/auth"
	"github.com/seanssullivan/iss-spotter/internal/health"
	"github.com/seanssullivan/iss-spotter/internal/metrics"
)

// Options configures a Server.
type Options struct {
	Addr       string
	Auth       auth.Config
	TrustProxy bool
	// WriteTimeout must cover a full lookup chain. Zero means 2 minutes.
	WriteTimeout time.Duration
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(opts Options, logger *slog.Logger, lookup PassLookup, ready *health.Readiness) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 2 * time.Minute
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           newHandler(opts, logger, lookup, ready),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// newHandler builds the routed middleware chain: metrics -> logging -> auth -> mux.
func newHandler(opts Options, logger *slog.Logger, lookup PassLookup, ready *health.Readiness) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", ready.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/passes", passesHandler(logger, lookup))

	var handler http.Handler = mux
	handler = auth.Middleware(opts.Auth)(handler)
	handler = loggingMiddleware(logger, opts.TrustProxy)(handler)
	handler = metrics.Middleware(handler)
	return handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting server", "component", "api", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}
