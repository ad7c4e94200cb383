package integration

import (
	"context"
	"time"

	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/google/uuid"
)

// SyncTransaction exposes the repositories bound to one database transaction
type SyncTransaction interface {
	Customers() partner.CustomerRepository
	Addresses() partner.AddressRepository

	// Savepoint runs fn in a nested transaction. An error from fn rolls back
	// only the work done inside fn.
	Savepoint(ctx context.Context, fn func(tx SyncTransaction) error) error
}

// TransactionScope runs fn in a database transaction, committing when fn
// returns nil and rolling back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(tx SyncTransaction) error) error
}

// AddressPushRow is a local address projected onto the Shopify field names.
// Address.ID holds the stored Shopify address id, empty when never pushed.
type AddressPushRow struct {
	AddressID uuid.UUID
	Address   RemoteAddress
}

// IsNew returns true if the address has not been created on Shopify yet
func (r *AddressPushRow) IsNew() bool {
	return r.Address.ID == ""
}

// AddressPushSource selects local addresses to push and records remote ids
type AddressPushSource interface {
	// FindAddressesForPush returns the customer's addresses modified at or
	// after since; all of them when since is nil.
	FindAddressesForPush(ctx context.Context, customerID partner.CustomerID, since *time.Time) ([]AddressPushRow, error)

	// SetShopifyAddressID stores the Shopify id of a pushed address
	SetShopifyAddressID(ctx context.Context, addressID uuid.UUID, shopifyAddressID string) error
}
