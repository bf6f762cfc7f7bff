// Package api provides the HTTP lint API for Playlint.
// It uses Echo framework to serve the upload-and-lint endpoints backed by
// the guard, governor, and invoker components.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/playlint/playlint/internal/config"
	"github.com/playlint/playlint/internal/governor"
	"github.com/playlint/playlint/internal/guard"
	"github.com/playlint/playlint/internal/invoker"
	"github.com/playlint/playlint/internal/profile"
	"github.com/playlint/playlint/internal/version"
)

// Server represents the Playlint lint API server.
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	registry *profile.Registry
	guard    *guard.Guard
	governor *governor.Governor
	invoker  *invoker.Invoker
}

// debugLog logs a message only if debug mode is enabled in config
func (s *Server) debugLog(format string, args ...interface{}) {
	if s.config.Server.Debug {
		log.Printf(format, args...)
	}
}

// New creates a new lint API server instance.
func New(cfg *config.Config, reg *profile.Registry, g *guard.Guard, gov *governor.Governor, inv *invoker.Invoker) *Server {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug

	// Set custom error handler
	e.HTTPErrorHandler = HTTPErrorHandler

	server := &Server{
		echo:     e,
		config:   cfg,
		registry: reg,
		guard:    g,
		governor: gov,
		invoker:  inv,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	// Recover middleware
	s.echo.Use(middleware.Recover())

	// Security headers middleware
	s.echo.Use(SecurityHeaders)

	// CORS middleware
	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Rate limiting
	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	// Accept header validation middleware
	s.echo.Use(ValidateAcceptHeader)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health and readiness
	s.echo.GET("/", s.healthCheck)
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/v1/ready", s.readiness)

	// Lint API
	s.echo.GET("/v1/profiles", s.listProfiles)
	s.echo.POST("/v1/lint/:profile", s.lintPlaybook)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	fmt.Printf("🚀 Starting Playlint API Server\n")
	fmt.Printf("   Address: http://%s\n", addr)
	fmt.Printf("   Lint command: %s\n", s.invoker.Command())
	fmt.Printf("   Governor capacity: %d\n", s.governor.Capacity())
	fmt.Printf("   Debug: %v\n", s.config.Server.Debug)
	fmt.Println()

	// Configure server timeouts
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("\n🛑 Shutting down Playlint API Server...")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	fmt.Println("✓ Server shutdown complete")
	return nil
}

// healthCheck reports whether the lint binary answers a liveness probe.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	if err := s.invoker.Healthy(ctx); err != nil {
		s.debugLog("health probe failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "degraded",
			"service": "playlint",
			"version": version.Version,
			"error":   "lint tool liveness probe failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  "playlint",
		"version":  version.Version,
		"profiles": len(s.registry.List()),
	})
}

// readiness reports whether the lint binary is resolvable on PATH.
func (s *Server) readiness(c echo.Context) error {
	if _, err := s.invoker.Resolve(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not ready",
			"error":  fmt.Sprintf("'%s' not found", s.invoker.Command()),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ready"})
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
