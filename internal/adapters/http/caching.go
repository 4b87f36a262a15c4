package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/fields/nearby"):
			ttl = "public, max-age=300" // 5 min for location queries

		case strings.Contains(path, "/recommendation"):
			ttl = "no-store" // Advice is time-sensitive, never cache

		case strings.Contains(path, "/schedules") || strings.Contains(path, "/schedule/"):
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/farms"):
			ttl = "public, max-age=300"

		case path == "/v1/stats":
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60" // Fields change as farmers draw

		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
