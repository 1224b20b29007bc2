package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger verifies a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	redis Pinger
}

// NewHealthHandler constructs handler.
func NewHealthHandler(redis Pinger) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.redis != nil {
		if err := h.redis.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
