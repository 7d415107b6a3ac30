package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrinehq/vitrine/app/models"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrProductInUse  = errors.New("product has orders and cannot be deleted")
	ErrInvalidStatus = models.ErrInvalidPaymentStatus
)

// UserRepository defines the interface for seller account operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	TouchAPIKeyUsage(ctx context.Context, id uint) error
}

// ProductRepository defines the interface for catalog operations
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetActiveByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDForOwner(ctx context.Context, id string, ownerID uint) (*models.Product, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	DeleteForOwner(ctx context.Context, id string, ownerID uint) error
}

// OrderFilter narrows the seller order listing. Query matches the order id,
// product name or customer name.
type OrderFilter struct {
	Query   string
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order operations
type OrderRepository interface {
	CreateIfNotExists(ctx context.Context, order *models.Order) (bool, error)
	GetByPaymentReference(ctx context.Context, provider, reference string) (*models.Order, error)
	GetWithProduct(ctx context.Context, id string) (*models.OrderWithProduct, error)
	GetByIDForSeller(ctx context.Context, id string, sellerID uint) (*models.OrderWithProduct, error)
	ListBySeller(ctx context.Context, sellerID uint, filter OrderFilter) ([]models.OrderWithProduct, int64, error)
	UpdateStatusForSeller(ctx context.Context, id string, sellerID uint, status string) error
	SummaryForSeller(ctx context.Context, sellerID uint, since time.Time) (*OrderSummary, error)
}

// OrderSummary aggregates a seller's orders. Revenue counts paid orders only.
type OrderSummary struct {
	TotalOrders int64           `json:"total_orders"`
	PaidOrders  int64           `json:"paid_orders"`
	OrdersSince int64           `json:"orders_since"`
	PaidRevenue decimal.Decimal `json:"paid_revenue"`
}

// WebhookEventRepository defines the interface for the processor webhook inbox
type WebhookEventRepository interface {
	CreateIfNotExists(ctx context.Context, event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Product      ProductRepository
	Order        OrderRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Product:      NewProductRepository(db),
		Order:        NewOrderRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
