package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repository"
	"github.com/vitrinehq/vitrine/internal/pkg/database"
	"github.com/vitrinehq/vitrine/internal/pkg/usercontext"
)

func setupTestRepos(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db, repository.NewRepositories(db)
}

func createSeller(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u, err := models.CreateUser("Test Seller", email, "secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(u).Error)
	return u
}

func createProduct(t *testing.T, db *gorm.DB, ownerID uint, name, price, status string) *models.Product {
	t.Helper()
	p := &models.Product{
		OwnerID: ownerID,
		Name:    name,
		Price:   decimal.RequireFromString(price),
		Status:  status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createOrder(t *testing.T, db *gorm.DB, product *models.Product, reference, customer string) *models.Order {
	t.Helper()
	o := &models.Order{
		ProductID:        product.ID,
		SellerID:         product.OwnerID,
		CustomerName:     customer,
		CustomerEmail:    strings.ToLower(strings.ReplaceAll(customer, " ", ".")) + "@example.com",
		Quantity:         1,
		TotalAmount:      product.Price,
		PaymentStatus:    models.PaymentStatusPaid,
		PaymentProvider:  models.PaymentProviderStripe,
		PaymentReference: reference,
	}
	require.NoError(t, db.Omit("Product").Create(o).Error)
	return o
}

// asSeller stands in for the API key middleware.
func asSeller(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.UserContext{UserID: id, IsLoggedIn: true})
		return c.Next()
	}
}

func jsonRequest(method, target string, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
