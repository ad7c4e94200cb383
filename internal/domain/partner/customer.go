package partner

import (
	"strings"
	"time"

	"github.com/erp/shopify-sync/internal/domain/shared"
)

// CustomerID is the record name of a customer. For customers mirrored from
// Shopify it is the Shopify customer id.
type CustomerID string

// String returns the string representation of CustomerID
func (id CustomerID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty
func (id CustomerID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "Individual"
	CustomerTypeCompany    CustomerType = "Company"
)

// IsValid returns true if the customer type is valid
func (t CustomerType) IsValid() bool {
	switch t {
	case CustomerTypeIndividual, CustomerTypeCompany:
		return true
	default:
		return false
	}
}

// Customer represents a customer in the partner context
type Customer struct {
	Name              CustomerID
	CustomerName      string
	ShopifyCustomerID *string
	CustomerGroup     string
	Territory         string
	CustomerType      CustomerType
	SyncWithShopify   bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewMirroredCustomer creates a customer mirroring a Shopify customer.
// The Shopify id becomes both the record name and the mirrored id. Apart
// from the id no field is mandatory: Shopify data is often incomplete.
func NewMirroredCustomer(shopifyCustomerID, customerName, customerGroup, territory string) (*Customer, error) {
	if strings.TrimSpace(shopifyCustomerID) == "" {
		return nil, shared.NewDomainError("INVALID_SHOPIFY_ID", "Shopify customer id cannot be empty")
	}

	now := time.Now()
	remoteID := shopifyCustomerID
	return &Customer{
		Name:              CustomerID(shopifyCustomerID),
		CustomerName:      customerName,
		ShopifyCustomerID: &remoteID,
		CustomerGroup:     customerGroup,
		Territory:         territory,
		CustomerType:      CustomerTypeIndividual,
		SyncWithShopify:   true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsMirrored returns true if the customer is linked to a Shopify customer
func (c *Customer) IsMirrored() bool {
	return c.ShopifyCustomerID != nil && *c.ShopifyCustomerID != ""
}

// ShopifyID returns the Shopify customer id, or "" when not linked
func (c *Customer) ShopifyID() string {
	if c.ShopifyCustomerID == nil {
		return ""
	}
	return *c.ShopifyCustomerID
}
