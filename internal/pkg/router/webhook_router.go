package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/app/controllers"
)

// WebhookRouter mounts processor callbacks. They are not rate limited since
// the processor retries in bursts.
type WebhookRouter struct {
	webhook *controllers.WebhookController
}

func (w WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/api/webhooks/stripe", w.webhook.HandleStripeWebhook)
}

func NewWebhookRouter(webhook *controllers.WebhookController) *WebhookRouter {
	return &WebhookRouter{webhook: webhook}
}
