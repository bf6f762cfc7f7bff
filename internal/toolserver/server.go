// Package toolserver provides the agent-facing tool-protocol server.
// It exposes the tool dispatcher over a uniform request envelope and
// pushes lint progress events over SSE and WebSocket channels.
package toolserver

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/playlint/playlint/internal/api"
	"github.com/playlint/playlint/internal/config"
	"github.com/playlint/playlint/internal/dispatcher"
)

// Server represents the Playlint tool-protocol server.
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	dispatcher *dispatcher.Dispatcher
	hub        *Hub
}

// debugLog logs a message only if debug mode is enabled in config
func (s *Server) debugLog(format string, args ...interface{}) {
	if s.config.Server.Debug {
		log.Printf(format, args...)
	}
}

// New creates a new tool server instance. The hub must be the same one
// wired into the dispatcher as its event publisher.
func New(cfg *config.Config, d *dispatcher.Dispatcher, hub *Hub) *Server {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug

	// Set custom error handler
	e.HTTPErrorHandler = api.HTTPErrorHandler

	server := &Server{
		echo:       e,
		config:     cfg,
		dispatcher: d,
		hub:        hub,
	}

	// Start event hub in background
	go hub.Run()

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	s.echo.Use(middleware.Recover())

	s.echo.Use(api.SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	s.echo.Use(middleware.RequestID())
}

// setupRoutes configures tool-protocol routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/", s.serviceDescriptor)
	s.echo.GET("/health", s.healthCheck)

	s.echo.POST("/v1/tools", s.handleTools)
	s.echo.GET("/sse", s.handleSSE)
	s.echo.GET("/v1/ws/events", s.handleEventsWebSocket)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.ToolPort)

	fmt.Printf("🚀 Starting Playlint Tool Server\n")
	fmt.Printf("   Address: http://%s\n", addr)
	fmt.Printf("   Tools: %d\n", len(s.dispatcher.ToolNames()))
	fmt.Printf("   Governor capacity: %d\n", s.dispatcher.Governor().Capacity())
	fmt.Println()

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("\n🛑 Shutting down Playlint Tool Server...")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	fmt.Println("✓ Server shutdown complete")
	return nil
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
