package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrinehq/vitrine/app/models"
	"gorm.io/gorm"
)

func TestProductRepository_ActiveScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seller := createSeller(t, db, "seller@example.com")
	active := createProduct(t, db, seller.ID, "Mug", "49.90", models.ProductStatusActive)
	inactive := createProduct(t, db, seller.ID, "Poster", "10.00", models.ProductStatusInactive)

	got, err := repo.GetActiveByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("49.90")))

	_, err = repo.GetActiveByID(ctx, inactive.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// settlement lookups ignore status
	got, err = repo.GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, got.OwnerID)

	_, err = repo.GetByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
}

func TestProductRepository_OwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	alice := createSeller(t, db, "alice@example.com")
	bob := createSeller(t, db, "bob@example.com")
	older := createProduct(t, db, alice.ID, "Old", "5.00", models.ProductStatusActive)
	require.NoError(t, db.Model(older).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	newer := createProduct(t, db, alice.ID, "New", "7.00", models.ProductStatusInactive)
	createProduct(t, db, bob.ID, "Bob's", "1.00", models.ProductStatusActive)

	list, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	_, err = repo.GetByIDForOwner(ctx, newer.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteForOwner(ctx, newer.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteForOwner(ctx, newer.ID, alice.ID))
	_, err = repo.GetByID(ctx, newer.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_DeleteWithOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	seller := createSeller(t, db, "seller@example.com")
	product := createProduct(t, db, seller.ID, "Mug", "49.90", models.ProductStatusActive)
	_, err := orders.CreateIfNotExists(ctx, newTestOrder(product, "pi_1"))
	require.NoError(t, err)

	err = repo.DeleteForOwner(ctx, product.ID, seller.ID)
	assert.ErrorIs(t, err, ErrProductInUse)

	_, err = repo.GetByID(ctx, product.ID)
	assert.NoError(t, err)
}

func TestProductRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seller := createSeller(t, db, "seller@example.com")
	product := createProduct(t, db, seller.ID, "Mug", "49.90", models.ProductStatusActive)

	product.Name = "Big Mug"
	product.Status = models.ProductStatusInactive
	require.NoError(t, repo.Update(ctx, product))

	got, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", got.Name)
	assert.False(t, got.IsPurchasable())
}
