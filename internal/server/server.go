package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/citare/internal/app"
)

// Server wraps the HTTP listener and routes requests to the application
// handlers.
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a server bound to the configured host and port.
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port),
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving requests. Blocks until the server is shut down.
func (s *Server) Start() error {
	s.app.Logger.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}
