package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/opentrack/internal/config"
	"github.com/ignite/opentrack/internal/tracker"
	"github.com/ignite/opentrack/internal/tracking"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server wired to the tracker store.
func NewServer(cfg *config.Config, store *tracker.Store) *Server {
	handlers := NewHandlers(store, cfg.Tracking.PublicBaseURL)
	trackingHandler := tracking.NewHandler(store)
	router := SetupRoutes(handlers, trackingHandler, cfg.Tracking.StaticDir)

	return &Server{
		config:  cfg.Server,
		handler: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
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
