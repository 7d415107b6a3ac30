package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/internal/pkg/usercontext"
)

// APIKeyUsers resolves API keys to sellers.
type APIKeyUsers interface {
	GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, error)
	TouchAPIKeyUsage(ctx context.Context, id uint) error
}

// APIKeyAuthMiddleware authenticates requests carrying a seller API key
// header. Requests without a key pass through anonymously; RequireAPIAuth
// rejects them on protected routes.
func APIKeyAuthMiddleware(users APIKeyUsers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		user, err := users.GetByAPIKeyHash(ctx, models.HashAPIKey(apiKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
			}
			log.Errorf("[Auth] API key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "API key verification failed"})
		}

		if !user.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account disabled"})
		}

		// Refresh last-used timestamp best-effort.
		if err := users.TouchAPIKeyUsage(ctx, user.ID); err != nil {
			log.Warnf("[Auth] Failed to update api key usage timestamp for user %d: %v", user.ID, err)
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     user.ID,
			Name:       user.Name,
			Email:      user.Email,
			IsLoggedIn: true,
		})

		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
