package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/config"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server around a configured router.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		config:  cfg,
		handler: handler,
	}
}

// Addr returns the listen address derived from the server config.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.GetHost(), strconv.Itoa(s.config.Port))
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.Addr(),
		Handler: s.handler,
		// Uploads of large member exports need the generous read timeout.
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
