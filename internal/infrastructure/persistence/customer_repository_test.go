package persistence

import (
	"context"
	"testing"

	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCustomerRepository_CreateAndFind(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer, err := partner.NewMirroredCustomer("207119551", "Bob Norman", "Retail", "All Territories")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, customer))

	t.Run("finds by name", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "207119551")
		require.NoError(t, err)
		assert.Equal(t, "Bob Norman", found.CustomerName)
		assert.Equal(t, "207119551", found.ShopifyID())
		assert.Equal(t, "Retail", found.CustomerGroup)
		assert.Equal(t, partner.CustomerTypeIndividual, found.CustomerType)
		assert.True(t, found.SyncWithShopify)
	})

	t.Run("returns not found", func(t *testing.T) {
		_, err := repo.FindByName(ctx, "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by shopify id", func(t *testing.T) {
		exists, err := repo.ExistsByShopifyCustomerID(ctx, "207119551")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByShopifyCustomerID(ctx, "1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("rejects a second customer with the same shopify id", func(t *testing.T) {
		dup, err := partner.NewMirroredCustomer("207119551", "Other", "", "")
		require.NoError(t, err)
		dup.Name = "local-copy"
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestGormCustomerRepository_FindSyncEnabled(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	enabled, err := partner.NewMirroredCustomer("2", "Enabled", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, enabled))

	disabled, err := partner.NewMirroredCustomer("1", "Disabled", "", "")
	require.NoError(t, err)
	disabled.SyncWithShopify = false
	require.NoError(t, repo.Create(ctx, disabled))

	local := &partner.Customer{Name: "LOCAL-1", CustomerName: "Local", CustomerType: partner.CustomerTypeCompany, SyncWithShopify: true}
	require.NoError(t, repo.Create(ctx, local))

	customers, err := repo.FindSyncEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, partner.CustomerID("2"), customers[0].Name)
}
