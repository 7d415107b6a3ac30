package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a catalog entry owned by a seller. Only active products can be
// bought; the price is the authoritative charge basis for checkout.
type Product struct {
	ID          string          `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID     uint            `gorm:"not null;index:idx_products_owner_created,priority:1" json:"owner_id"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=1,max=200"`
	Description string          `gorm:"type:text" json:"description" validate:"max=5000"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url" validate:"omitempty,max=500"`
	Status      string          `gorm:"type:varchar(20);not null;default:'active';index" json:"status" validate:"oneof=active inactive"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index:idx_products_owner_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-" validate:"-"`
}

// BeforeCreate assigns the UUID primary key.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
	return nil
}

func (p *Product) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// IsPurchasable reports whether buyers may check out this product.
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive
}
