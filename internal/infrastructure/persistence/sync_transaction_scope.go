package persistence

import (
	"context"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(tx integration.SyncTransaction) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSyncTransaction{tx: tx})
	})
}

// gormSyncTransaction provides access to the repositories within a transaction.
type gormSyncTransaction struct {
	tx *gorm.DB
}

// Customers returns the customer repository scoped to the current transaction.
func (t *gormSyncTransaction) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(t.tx)
}

// Addresses returns the address repository scoped to the current transaction.
func (t *gormSyncTransaction) Addresses() partner.AddressRepository {
	return NewGormAddressRepository(t.tx)
}

// Savepoint runs fn in a nested GORM transaction, which GORM backs with a SAVEPOINT.
func (t *gormSyncTransaction) Savepoint(ctx context.Context, fn func(tx integration.SyncTransaction) error) error {
	return t.tx.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return fn(&gormSyncTransaction{tx: inner})
	})
}

// Ensure GormTransactionScope implements TransactionScope
var _ integration.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormSyncTransaction implements SyncTransaction
var _ integration.SyncTransaction = (*gormSyncTransaction)(nil)
