package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/internal/pkg/payment"
)

type ConfigController struct {
	cfg *payment.Config
}

func NewConfigController(cfg *payment.Config) *ConfigController {
	return &ConfigController{cfg: cfg}
}

// HandleGetConfig returns what the storefront needs to mount the payment form.
func (cc *ConfigController) HandleGetConfig(c *fiber.Ctx) error {
	if cc.cfg.PublishableKey == "" {
		return jsonError(c, fiber.StatusInternalServerError, "publishable key not configured")
	}
	return c.JSON(fiber.Map{
		"publishableKey": cc.cfg.PublishableKey,
		"currency":       cc.cfg.Currency,
	})
}
