// Package api exposes the entry query service over HTTP.
package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"

	"github.com/entrybase-dev/entrybase/internal/auth"
	"github.com/entrybase-dev/entrybase/internal/config"
	"github.com/entrybase-dev/entrybase/internal/database"
	"github.com/entrybase-dev/entrybase/internal/entries"
	"github.com/entrybase-dev/entrybase/internal/observability"
)

// Server represents the HTTP server
type Server struct {
	app     *fiber.App
	config  *config.Config
	db      *database.Connection
	metrics *observability.Metrics
	jwt     *auth.JWTManager
	entries *EntriesHandler
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *database.Connection) *Server {
	app := fiber.New(fiber.Config{
		ServerHeader:          "Entrybase",
		AppName:               "Entrybase v1.0.0",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          errorHandler,
	})

	metrics := observability.NewMetrics()
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	repository := entries.NewRepository(db, metrics)
	registry := entries.NewSectionRegistry(db)
	lookup := database.NewLookup(db)

	s := &Server{
		app:     app,
		config:  cfg,
		db:      db,
		metrics: metrics,
		jwt:     jwtManager,
		entries: NewEntriesHandler(cfg, repository, registry, lookup),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(cors.New())
	s.app.Use(SecurityHeaders())
	if rl := s.config.Server.RateLimit; rl.Enabled {
		s.app.Use(RateLimiter(rl))
	}
	s.app.Use(s.metrics.MetricsMiddleware())
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", s.metrics.Handler())

	v1 := s.app.Group("/api/v1", OptionalAuth(s.jwt))
	v1.Get("/entries", s.entries.List)
	v1.Get("/entries/count", s.entries.Count)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.db.Health(c.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.app.Listen(s.config.Server.Address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App returns the underlying Fiber app, used by tests
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler handles errors globally
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Msg("Server error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
