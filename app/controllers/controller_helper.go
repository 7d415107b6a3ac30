package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/internal/pkg/checkout"
	"github.com/vitrinehq/vitrine/internal/pkg/validation"
)

var validate = validation.New()

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondCheckoutError maps checkout failures to their HTTP status and the
// client-safe message. The full cause is logged.
func respondCheckoutError(c *fiber.Ctx, component string, err error) error {
	kind := checkout.KindOf(err)
	status := kind.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		log.Errorf("[%s] %s: %v", component, kind, err)
	} else {
		log.Warnf("[%s] %s: %v", component, kind, err)
	}
	return jsonError(c, status, checkout.PublicMessage(err))
}

// respondRepoError answers 404 for missing rows and 500 otherwise.
func respondRepoError(c *fiber.Ctx, component, notFoundMsg string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusNotFound, notFoundMsg)
	}
	log.Errorf("[%s] %v", component, err)
	return jsonError(c, fiber.StatusInternalServerError, "internal server error")
}

func queryInt(c *fiber.Ctx, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
