package partner

import (
	"context"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByName finds a customer by its record name
	FindByName(ctx context.Context, name CustomerID) (*Customer, error)

	// FindSyncEnabled finds all customers linked to Shopify with sync enabled
	FindSyncEnabled(ctx context.Context) ([]Customer, error)

	// ExistsByShopifyCustomerID checks if a customer mirrors the given Shopify customer
	ExistsByShopifyCustomerID(ctx context.Context, shopifyCustomerID string) (bool, error)

	// Create inserts a new customer
	Create(ctx context.Context, customer *Customer) error
}
