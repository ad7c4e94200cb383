// Package integration contains the Integration bounded context.
// This context manages the synchronization of customers and addresses with Shopify.
//
// Key concepts:
//   - CustomerPlatform: Port interface for the Shopify customer API
//   - RemoteCustomer / RemoteAddress: Value objects as returned by Shopify
//   - ShopifySettings: Integration settings (customer group, last sync time)
//   - SyncLogEntry: Audit record of a failed or notable sync step
//   - TransactionScope: Port for per-customer transactions with savepoints
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
