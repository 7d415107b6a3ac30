package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/internal/pkg/usercontext"
)

// RequireAPIAuth rejects requests without an authenticated seller.
func RequireAPIAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "API key required",
		})
	}
	return c.Next()
}
