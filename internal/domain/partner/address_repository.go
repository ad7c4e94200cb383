package partner

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	// FindByID finds an address by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)

	// FindByCustomer finds all addresses owned by a customer
	FindByCustomer(ctx context.Context, customerID CustomerID) ([]Address, error)

	// ExistsByName checks if an address with the given record name exists
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Create inserts a new address
	Create(ctx context.Context, address *Address) error
}

// TerritoryRepository defines the interface for territory lookups
type TerritoryRepository interface {
	// FindRoot returns the root of the territory tree
	FindRoot(ctx context.Context) (*Territory, error)
}
