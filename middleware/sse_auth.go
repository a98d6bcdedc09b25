package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEUserMiddleware resolves the user id for EventSource connections, which
// cannot set custom headers. The gateway validates the session token on the
// query string and rewrites it into user_id before proxying here.
func SSEUserMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			userID = strings.TrimSpace(c.Query("user_id"))
		}
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing user identity for stream",
			})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}
