// Package partner contains the Partner bounded context as seen by the
// Shopify integration: customers and the addresses they own.
//
// Key concepts:
//   - Customer: aggregate keyed by its record name (CustomerID); mirrored
//     customers use the Shopify customer id as their name
//   - Address: owned by exactly one customer through a typed CustomerID reference
//   - Territory: sales territory hierarchy; new customers land in its root
package partner
