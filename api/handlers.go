package api

import (
	"context"
	"errors"
	"time"

	"github.com/CristiGvl/picoTVKit/internal/hunter"
	"github.com/gofiber/fiber/v2"
)

// Memory endpoint
func (s *Server) getMemory(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	stats := s.memory.Stats(ctx)
	if stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "memory statistics unavailable"})
	}

	return c.JSON(stats)
}

// CPU endpoint
func (s *Server) getCPU(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	info, err := s.cpuReader.GetInfo(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(info)
}

// Debug overlay endpoint
func (s *Server) getDebug(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	text, ok := s.debug.Sample(ctx)
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "memory statistics unavailable"})
	}

	return c.JSON(fiber.Map{"text": text})
}

// Playlist hunt endpoint
func (s *Server) hunt(c *fiber.Ctx) error {
	if s.hunter == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "playlist hunting disabled"})
	}

	var target hunter.Target
	if err := c.BodyParser(&target); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 45*time.Second)
	defer cancel()

	playlist, err := s.hunter.Hunt(ctx, target)
	switch {
	case errors.Is(err, hunter.ErrInvalidTarget):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, hunter.ErrPlaylistNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"source": target.Source, "playlist": playlist})
}
