package repository

import (
	"context"

	"github.com/vitrinehq/vitrine/app/models"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID returns the product regardless of its status. Settlement uses it
// so that a product deactivated after payment still resolves its seller.
func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveByID returns the product only if it is currently purchasable.
func (r *productRepository) GetActiveByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.ProductStatusActive).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDForOwner(ctx context.Context, id string, ownerID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByOwner returns all products of a seller, newest first.
func (r *productRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// ListActive returns the public catalog, newest first.
func (r *productRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ProductStatusActive).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Owner").Save(product).Error
}

// DeleteForOwner removes a product owned by ownerID. Products that already
// have orders are kept for the order history and ErrProductInUse is
// returned; sellers deactivate those instead.
func (r *productRepository) DeleteForOwner(ctx context.Context, id string, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&product).Error; err != nil {
			return err
		}

		var orders int64
		if err := tx.Model(&models.Order{}).Where("product_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrProductInUse
		}

		return tx.Delete(&product).Error
	})
}
