package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/app/controllers"
	"github.com/vitrinehq/vitrine/internal/pkg/middleware"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Controllers bundles every HTTP handler set the routers mount.
type Controllers struct {
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Config   *controllers.ConfigController
	Product  *controllers.ProductController
	Order    *controllers.OrderController
	Seller   *controllers.SellerController
	Stats    *controllers.StatsController
}

// Options carries the shared dependencies of the routers.
type Options struct {
	Users          middleware.APIKeyUsers
	LimiterStorage fiber.Storage
	RateLimitMax   int
}

func InstallRouter(app *fiber.App, c Controllers, opts Options) {
	// The webhook router goes first so its route is matched before the
	// rate limited /api group.
	setup(app, NewWebhookRouter(c.Webhook), NewApiRouter(c, opts))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
