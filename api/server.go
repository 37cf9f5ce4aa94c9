package api

import (
	"log/slog"
	"time"

	"github.com/CristiGvl/picoTVKit/internal/cpu"
	"github.com/CristiGvl/picoTVKit/internal/debugstats"
	"github.com/CristiGvl/picoTVKit/internal/hunter"
	"github.com/CristiGvl/picoTVKit/internal/memory"
	"github.com/CristiGvl/picoTVKit/internal/platform"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Options carries the server's collaborators. Nil fields get platform
// defaults, except Hunter: without it /api/hunt reports 503.
type Options struct {
	Memory *memory.Provider
	CPU    cpu.Reader
	Debug  *debugstats.Provider
	Hunter *hunter.Hunter
	Logger *slog.Logger
}

// Server represents the API server
type Server struct {
	app       *fiber.App
	memory    *memory.Provider
	cpuReader cpu.Reader
	debug     *debugstats.Provider
	hunter    *hunter.Hunter
	logger    *slog.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Memory == nil {
		opts.Memory = memory.NewProvider(memory.NewSource(), opts.Logger)
	}
	if opts.CPU == nil {
		opts.CPU = cpu.NewReader()
	}
	if opts.Debug == nil {
		opts.Debug = debugstats.New(opts.Memory, opts.CPU, debugstats.Config{Logger: opts.Logger})
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
		ServerHeader:          "picoTVKit",
		AppName:               "picoTVKit v1.0",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "*",
		MaxAge:       86400, // 24 hours
	}))

	server := &Server{
		app:       app,
		memory:    opts.Memory,
		cpuReader: opts.CPU,
		debug:     opts.Debug,
		hunter:    opts.Hunter,
		logger:    opts.Logger,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// System statistics
	api.Get("/memory", s.getMemory)
	api.Get("/cpu", s.getCPU)
	api.Get("/debug", s.getDebug)

	// Playlist hunting
	api.Post("/hunt", s.hunt)

	// Health check
	api.Get("/health", s.healthCheck)
}

// Start starts the API server
func (s *Server) Start(address string) error {
	s.logger.Info("api: listening", "address", address)
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"platform":  platform.GetOS(),
		"supported": platform.IsSupported(platform.GetOS()),
		"hunter":    s.hunter != nil,
		"timestamp": time.Now().Unix(),
	})
}
