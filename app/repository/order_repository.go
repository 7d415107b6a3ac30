package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitrinehq/vitrine/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultOrdersPerPage = 5
	MaxOrdersPerPage     = 100
)

const orderWithProductColumns = "orders.*, products.name AS product_name, products.image_url AS product_image_url"

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateIfNotExists inserts the order unless one already exists for the same
// payment provider and reference. It reports whether a row was written.
func (r *orderRepository) CreateIfNotExists(ctx context.Context, order *models.Order) (bool, error) {
	tx := r.db.WithContext(ctx).Omit("Product").Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "payment_provider"},
			{Name: "payment_reference"},
		},
		DoNothing: true,
	}).Create(order)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *orderRepository) GetByPaymentReference(ctx context.Context, provider, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("payment_provider = ? AND payment_reference = ?", provider, reference).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetWithProduct loads an order with its product name and image.
func (r *orderRepository) GetWithProduct(ctx context.Context, id string) (*models.OrderWithProduct, error) {
	var rows []models.OrderWithProduct
	err := r.joined(ctx).Where("orders.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *orderRepository) GetByIDForSeller(ctx context.Context, id string, sellerID uint) (*models.OrderWithProduct, error) {
	var rows []models.OrderWithProduct
	err := r.joined(ctx).
		Where("orders.id = ? AND orders.seller_id = ?", id, sellerID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListBySeller returns one page of the seller's orders, newest first, and
// the total number of matching orders.
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uint, filter OrderFilter) ([]models.OrderWithProduct, int64, error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)

	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("orders").
			Joins("INNER JOIN products ON products.id = orders.product_id").
			Where("orders.seller_id = ?", sellerID)
		if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
			like := "%" + term + "%"
			q = q.Where("(LOWER(orders.id) LIKE ? OR LOWER(products.name) LIKE ? OR LOWER(orders.customer_name) LIKE ?)",
				like, like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderWithProduct
	err := scoped().
		Select(orderWithProductColumns).
		Order("orders.created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatusForSeller changes the payment status of one of the seller's
// orders. Unknown orders yield gorm.ErrRecordNotFound.
func (r *orderRepository) UpdateStatusForSeller(ctx context.Context, id string, sellerID uint, status string) error {
	if !models.IsValidPaymentStatus(status) {
		return ErrInvalidStatus
	}
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Update("payment_status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		// same status twice is not an error
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Order{}).
			Where("id = ? AND seller_id = ?", id, sellerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *orderRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders").
		Select(orderWithProductColumns).
		Joins("INNER JOIN products ON products.id = orders.product_id")
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultOrdersPerPage
	}
	if perPage > MaxOrdersPerPage {
		perPage = MaxOrdersPerPage
	}
	return page, perPage
}

// SummaryForSeller counts the seller's orders and sums paid revenue. Orders
// created at or after since are counted separately.
func (r *orderRepository) SummaryForSeller(ctx context.Context, sellerID uint, since time.Time) (*OrderSummary, error) {
	var row struct {
		TotalOrders int64
		PaidOrders  int64
		OrdersSince int64
		PaidRevenue decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS paid_orders,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS orders_since,
			SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END) AS paid_revenue`,
			models.PaymentStatusPaid, since, models.PaymentStatusPaid).
		Where("seller_id = ?", sellerID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary := &OrderSummary{
		TotalOrders: row.TotalOrders,
		PaidOrders:  row.PaidOrders,
		OrdersSince: row.OrdersSince,
		PaidRevenue: decimal.Zero,
	}
	if row.PaidRevenue.Valid {
		summary.PaidRevenue = row.PaidRevenue.Decimal.Round(2)
	}
	return summary, nil
}
