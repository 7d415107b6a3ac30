package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/internal/pkg/checkout"
)

// IntentCreator issues payment intents for purchases.
type IntentCreator interface {
	CreateIntent(ctx context.Context, req checkout.PurchaseRequest) (*checkout.IntentResult, error)
}

type CheckoutController struct {
	issuer IntentCreator
}

func NewCheckoutController(issuer IntentCreator) *CheckoutController {
	return &CheckoutController{issuer: issuer}
}

// HandleCreatePaymentIntent handles POST /api/create-payment-intent.
// Any client supplied amount is ignored; the price comes from the catalog.
func (cc *CheckoutController) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req checkout.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := cc.issuer.CreateIntent(c.UserContext(), req)
	if err != nil {
		return respondCheckoutError(c, "Checkout", err)
	}
	return c.JSON(result)
}
