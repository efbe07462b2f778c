package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe reports that the process is serving.
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe reports ready once the catalog holds projects.
func (h *Handler) ReadinessProbe(c fiber.Ctx) error {
	n, err := h.catalog.Count(c.Context())
	if err != nil || n == 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ready",
		"projects": n,
		"sessions": h.sessions.Len(),
	})
}

// StartupProbe reports that startup, including the translation check, has
// completed.
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}
