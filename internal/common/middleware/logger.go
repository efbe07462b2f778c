package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger returns the access log middleware.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | lang=${cookie:showroom_lang} sid=${cookie:showroom_sid}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Next: func(c fiber.Ctx) bool {
			// probes and static assets only add noise
			path := c.Path()
			return strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/static")
		},
	})
}
