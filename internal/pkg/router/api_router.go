package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vitrinehq/vitrine/internal/pkg/middleware"
)

const defaultRateLimitMax = 60

type ApiRouter struct {
	c    Controllers
	opts Options
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	limit := h.opts.RateLimitMax
	if limit <= 0 {
		limit = defaultRateLimitMax
	}
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Storage:    h.opts.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// storefront checkout
	api.Post("/create-payment-intent", h.c.Checkout.HandleCreatePaymentIntent)

	v1 := api.Group("/v1")
	v1.Get("/config", h.c.Config.HandleGetConfig)
	v1.Get("/products", h.c.Product.HandleListProducts)
	v1.Get("/products/:id", h.c.Product.HandleGetProduct)
	v1.Post("/sellers", h.c.Seller.HandleRegister)
	v1.Post("/sellers/api-key", h.c.Seller.HandleRotateAPIKey)

	// seller dashboard, API key protected
	seller := v1.Group("/seller", middleware.APIKeyAuthMiddleware(h.opts.Users), middleware.RequireAPIAuth)
	seller.Get("/products", h.c.Product.HandleListSellerProducts)
	seller.Post("/products", h.c.Product.HandleCreateProduct)
	seller.Put("/products/:id", h.c.Product.HandleUpdateProduct)
	seller.Delete("/products/:id", h.c.Product.HandleDeleteProduct)
	seller.Post("/products/:id/image", h.c.Product.HandleUploadProductImage)
	seller.Get("/orders", h.c.Order.HandleListOrders)
	seller.Get("/orders/:id", h.c.Order.HandleGetOrder)
	seller.Patch("/orders/:id/status", h.c.Order.HandleUpdateOrderStatus)
	seller.Get("/stats", h.c.Stats.HandleGetSummary)
}

func NewApiRouter(c Controllers, opts Options) *ApiRouter {
	return &ApiRouter{c: c, opts: opts}
}
