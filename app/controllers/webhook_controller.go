package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/internal/pkg/checkout"
)

const stripeSignatureHeader = "Stripe-Signature"

// EventHandler settles verified processor deliveries.
type EventHandler interface {
	HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) (*checkout.Ack, error)
}

type WebhookController struct {
	reconciler EventHandler
}

func NewWebhookController(reconciler EventHandler) *WebhookController {
	return &WebhookController{reconciler: reconciler}
}

// HandleStripeWebhook handles POST /api/webhooks/stripe. The body is passed
// on byte for byte since the signature covers the raw payload.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)

	ack, err := wc.reconciler.HandleEvent(c.UserContext(), rawBody, c.Get(stripeSignatureHeader))
	if err != nil {
		return respondCheckoutError(c, "Webhook", err)
	}
	return c.JSON(ack)
}
