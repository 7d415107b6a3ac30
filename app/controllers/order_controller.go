package controllers

import (
	"errors"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repository"
	"github.com/vitrinehq/vitrine/internal/pkg/usercontext"
)

// SummaryInvalidator drops cached dashboard summaries.
type SummaryInvalidator interface {
	Invalidate(sellerID uint)
}

type OrderController struct {
	orders    repository.OrderRepository
	summaries SummaryInvalidator
}

// NewOrderController creates the seller order controller. summaries may be nil.
func NewOrderController(orders repository.OrderRepository, summaries SummaryInvalidator) *OrderController {
	return &OrderController{orders: orders, summaries: summaries}
}

// HandleListOrders lists the seller's orders, newest first, with optional
// search over order id, product name and customer name.
func (oc *OrderController) HandleListOrders(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		Query:   strings.TrimSpace(c.Query("q")),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = repository.DefaultOrdersPerPage
	}
	if filter.PerPage > repository.MaxOrdersPerPage {
		filter.PerPage = repository.MaxOrdersPerPage
	}

	orders, total, err := oc.orders.ListBySeller(c.UserContext(), usercontext.GetUserID(c), filter)
	if err != nil {
		return respondRepoError(c, "Order", "order not found", err)
	}

	return c.JSON(fiber.Map{
		"orders":      orders,
		"total":       total,
		"page":        filter.Page,
		"per_page":    filter.PerPage,
		"total_pages": int(math.Ceil(float64(total) / float64(filter.PerPage))),
	})
}

// HandleGetOrder returns one of the seller's orders.
func (oc *OrderController) HandleGetOrder(c *fiber.Ctx) error {
	order, err := oc.orders.GetByIDForSeller(c.UserContext(), c.Params("id"), usercontext.GetUserID(c))
	if err != nil {
		return respondRepoError(c, "Order", "order not found", err)
	}
	return c.JSON(order)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateOrderStatus sets the payment status of one of the seller's
// orders.
func (oc *OrderController) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !models.IsValidPaymentStatus(status) {
		return jsonError(c, fiber.StatusBadRequest, models.ErrInvalidPaymentStatus.Error())
	}

	ctx := c.UserContext()
	sellerID := usercontext.GetUserID(c)
	if err := oc.orders.UpdateStatusForSeller(ctx, c.Params("id"), sellerID, status); err != nil {
		if errors.Is(err, repository.ErrInvalidStatus) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return respondRepoError(c, "Order", "order not found", err)
	}
	if oc.summaries != nil {
		oc.summaries.Invalidate(sellerID)
	}

	order, err := oc.orders.GetByIDForSeller(ctx, c.Params("id"), sellerID)
	if err != nil {
		return respondRepoError(c, "Order", "order not found", err)
	}
	return c.JSON(order)
}
