package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/internal/pkg/payment"
	"github.com/vitrinehq/vitrine/internal/pkg/validation"
	"gorm.io/gorm"
)

// ProductCatalog is the catalog lookup used by checkout.
type ProductCatalog interface {
	GetActiveByID(ctx context.Context, id string) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// IntentResult is handed to the client to confirm the payment.
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// Issuer creates payment intents for single-product purchases.
type Issuer struct {
	catalog   ProductCatalog
	gateway   payment.Gateway
	currency  string
	minAmount int64
	validate  *validator.Validate
}

// NewIssuer creates an issuer charging in cfg.Currency and refusing amounts
// below cfg.MinimumAmount.
func NewIssuer(catalog ProductCatalog, gateway payment.Gateway, cfg *payment.Config) *Issuer {
	return &Issuer{
		catalog:   catalog,
		gateway:   gateway,
		currency:  cfg.Currency,
		minAmount: cfg.MinimumAmount,
		validate:  validation.New(),
	}
}

// CreateIntent validates the request, prices it from the catalog and opens a
// payment intent carrying the product and buyer as metadata. Nothing is
// written locally.
func (i *Issuer) CreateIntent(ctx context.Context, req PurchaseRequest) (*IntentResult, error) {
	const op = "checkout.CreateIntent"

	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.BuyerInfo != nil {
		req.BuyerInfo.normalize()
	}
	if err := i.validate.Struct(req); err != nil {
		return nil, newError(InvalidRequest, op, validation.Message(err), err)
	}

	product, err := i.catalog.GetActiveByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(NotFound, op, "product not found", err)
		}
		log.Errorf("[Checkout] Product lookup failed for %s: %v", req.ProductID, err)
		return nil, newError(StorageError, op, "failed to load product", err)
	}

	amount := ToMinorUnits(product.Price)
	if amount < i.minAmount {
		return nil, newError(InvalidRequest, op, "amount too small",
			fmt.Errorf("amount %d below minimum %d", amount, i.minAmount))
	}

	intent, err := i.gateway.CreatePaymentIntent(ctx, payment.IntentParams{
		Amount:   amount,
		Currency: i.currency,
		Metadata: intentMetadata(product.ID, product.Name, req.BuyerInfo),
	})
	if err != nil {
		log.Errorf("[Checkout] Creating payment intent for product %s failed: %v", product.ID, err)
		return nil, newError(InternalError, op, "failed to create payment intent", err)
	}

	log.Infof("[Checkout] Created payment intent %s for product %s (%d %s)", intent.ID, product.ID, amount, i.currency)
	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}
