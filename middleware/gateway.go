package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware validates the Bearer token the API gateway attaches
// to every request. Authentication of end users happens at the gateway; this
// service only checks that the request really came through it.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("FALTAUNO_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Println("[GATEWAY_AUTH] FALTAUNO_SERVICE_TOKEN not set — gateway check disabled (dev mode)")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("[GATEWAY_AUTH] missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != expectedToken {
			log.Printf("[GATEWAY_AUTH] invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}
		return c.Next()
	}
}
