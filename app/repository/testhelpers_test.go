package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/internal/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
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
