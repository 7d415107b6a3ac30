package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/vitrinehq/vitrine/internal/pkg/statistics"
	"github.com/vitrinehq/vitrine/internal/pkg/usercontext"
)

// SummaryProvider computes seller dashboard summaries.
type SummaryProvider interface {
	SellerSummary(ctx context.Context, sellerID uint) (*statistics.SellerSummary, error)
}

type StatsController struct {
	summaries SummaryProvider
}

func NewStatsController(summaries SummaryProvider) *StatsController {
	return &StatsController{summaries: summaries}
}

// HandleGetSummary returns order counts and paid revenue of the seller.
func (sc *StatsController) HandleGetSummary(c *fiber.Ctx) error {
	summary, err := sc.summaries.SellerSummary(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondRepoError(c, "Statistics", "summary not found", err)
	}
	return c.JSON(summary)
}
