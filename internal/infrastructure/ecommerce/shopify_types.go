package ecommerce

import (
	"encoding/json"
	"strconv"

	"github.com/erp/shopify-sync/internal/domain/integration"
)

// ShopifyCustomersResponse is the body of GET /customers.json
type ShopifyCustomersResponse struct {
	Customers []json.RawMessage `json:"customers"`
}

// ShopifyCustomer is the subset of the customer resource the sync reads
type ShopifyCustomer struct {
	ID        json.Number      `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Addresses []ShopifyAddress `json:"addresses"`
}

// ShopifyAddress is a customer address resource
type ShopifyAddress struct {
	ID         json.Number `json:"id,omitempty"`
	CustomerID json.Number `json:"customer_id,omitempty"`
	Address1   string      `json:"address1"`
	Address2   string      `json:"address2"`
	City       string      `json:"city"`
	Province   string      `json:"province"`
	Country    string      `json:"country"`
	Zip        string      `json:"zip"`
	Phone      string      `json:"phone"`
}

// ShopifyCustomerAddressResponse is the body returned by address create/update
type ShopifyCustomerAddressResponse struct {
	CustomerAddress ShopifyAddress `json:"customer_address"`
}

// toRemoteAddress converts a Shopify address to the domain value object
func (a *ShopifyAddress) toRemoteAddress() integration.RemoteAddress {
	return integration.RemoteAddress{
		ID:       a.ID.String(),
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		Province: a.Province,
		Country:  a.Country,
		Zip:      a.Zip,
		Phone:    a.Phone,
	}
}

// toRemoteCustomer converts a Shopify customer to the domain value object
func (c *ShopifyCustomer) toRemoteCustomer(raw []byte) integration.RemoteCustomer {
	addresses := make([]integration.RemoteAddress, 0, len(c.Addresses))
	for i := range c.Addresses {
		addresses = append(addresses, c.Addresses[i].toRemoteAddress())
	}
	return integration.RemoteCustomer{
		ID:        c.ID.String(),
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Addresses: addresses,
		Raw:       raw,
	}
}

// addressPayload builds the "address" object sent on create and update.
// The id is included only on update.
func addressPayload(a *integration.RemoteAddress, withID bool) map[string]any {
	payload := map[string]any{
		"address1": a.Address1,
		"address2": a.Address2,
		"city":     a.City,
		"province": a.Province,
		"country":  a.Country,
		"zip":      a.Zip,
	}
	if a.Phone != "" {
		payload["phone"] = a.Phone
	}
	if withID {
		if n, err := strconv.ParseInt(a.ID, 10, 64); err == nil {
			payload["id"] = n
		} else {
			payload["id"] = a.ID
		}
	}
	return payload
}
