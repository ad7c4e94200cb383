package partner

import (
	"strings"
	"time"

	"github.com/erp/shopify-sync/internal/domain/shared"
	"github.com/google/uuid"
)

// AddressType represents the purpose of an address
type AddressType string

const (
	AddressTypeBilling  AddressType = "Billing"
	AddressTypeShipping AddressType = "Shipping"
)

// String returns the string representation of AddressType
func (t AddressType) String() string {
	return string(t)
}

// Address is a postal address owned by a single customer
type Address struct {
	ID               uuid.UUID
	Name             string
	CustomerID       CustomerID
	Title            string
	Type             AddressType
	Line1            string
	Line2            string
	City             string
	State            string
	Pincode          string
	Country          string
	Phone            string
	Email            string
	ShopifyAddressID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AddressName derives the record name of an address from its title and type,
// e.g. "John Doe" + Billing -> "John Doe-Billing".
func AddressName(title string, addressType AddressType) string {
	return strings.TrimSpace(title) + "-" + strings.TrimSpace(addressType.String())
}

// NewAddress creates an address for a customer.
func NewAddress(customerID CustomerID, title string, addressType AddressType) (*Address, error) {
	if customerID.IsZero() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Address must belong to a customer")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Address title cannot be empty")
	}

	now := time.Now()
	return &Address{
		ID:         uuid.New(),
		Name:       AddressName(title, addressType),
		CustomerID: customerID,
		Title:      title,
		Type:       addressType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsPushed returns true once the address exists on Shopify
func (a *Address) IsPushed() bool {
	return a.ShopifyAddressID != nil && *a.ShopifyAddressID != ""
}

// MarkPushed records the Shopify id assigned to the address
func (a *Address) MarkPushed(shopifyAddressID string) {
	a.ShopifyAddressID = &shopifyAddressID
	a.UpdatedAt = time.Now()
}
