package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const PaymentProviderStripe = "stripe"

var (
	ErrNegativePrice        = errors.New("price must not be negative")
	ErrInvalidPaymentStatus = errors.New("payment status must be one of pending, paid, failed")
)

// Order records a settled sale. One row exists per processor payment,
// enforced by the unique (payment_provider, payment_reference) index.
type Order struct {
	ID               string          `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID        string          `gorm:"type:char(36);not null;index" json:"product_id"`
	SellerID         uint            `gorm:"not null;index:idx_orders_seller_created,priority:1" json:"seller_id"`
	CustomerName     string          `gorm:"type:varchar(200);not null" json:"customer_name"`
	CustomerEmail    string          `gorm:"type:varchar(200);not null" json:"customer_email"`
	CustomerAddress  string          `gorm:"type:varchar(500)" json:"customer_address"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentStatus    string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	PaymentProvider  string          `gorm:"type:varchar(20);not null;uniqueIndex:ux_orders_payment,priority:1" json:"payment_provider"`
	PaymentReference string          `gorm:"type:varchar(191);not null;uniqueIndex:ux_orders_payment,priority:2" json:"payment_reference"`
	CreatedAt        time.Time       `gorm:"autoCreateTime;index:idx_orders_seller_created,priority:2" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate assigns the UUID primary key.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// OrderWithProduct is the dashboard read model: an order joined with the
// product it was placed for.
type OrderWithProduct struct {
	Order
	ProductName     string `json:"product_name"`
	ProductImageURL string `json:"product_image_url"`
}

// IsValidPaymentStatus reports whether s is a known payment status.
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	default:
		return false
	}
}
