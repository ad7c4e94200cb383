package integration

import "time"

// CustomerSyncResult reports what a customer sync run did
type CustomerSyncResult struct {
	// CreatedCustomerIDs lists the Shopify ids of the customers created, in order
	CreatedCustomerIDs []string `json:"created_customer_ids"`
	SkippedCount       int      `json:"skipped_count"`
	FailedCount        int      `json:"failed_count"`
	// FailedAddressCount counts addresses that could not be created for an
	// otherwise created customer
	FailedAddressCount int `json:"failed_address_count"`
}

// Count returns the number of customers created
func (r *CustomerSyncResult) Count() int {
	return len(r.CreatedCustomerIDs)
}

// AddressSyncResult reports the addresses pushed for one customer
type AddressSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Total returns the number of addresses pushed
func (r *AddressSyncResult) Total() int {
	return r.Created + r.Updated
}

// SyncSummary reports a full sync run
type SyncSummary struct {
	Customers        int                 `json:"customers"`
	CustomerResult   *CustomerSyncResult `json:"customer_result,omitempty"`
	AddressesCreated int                 `json:"addresses_created"`
	AddressesUpdated int                 `json:"addresses_updated"`
	PushedCustomers  int                 `json:"pushed_customers"`
	Skipped          bool                `json:"skipped"`
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       time.Time           `json:"finished_at"`
}

// Duration returns how long the run took
func (s *SyncSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
