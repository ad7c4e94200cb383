package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSyncTestDB creates an in-memory SQLite database with the sync schema
func setupSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	statements := []string{
		`CREATE TABLE customers (
			name TEXT PRIMARY KEY,
			customer_name TEXT,
			shopify_customer_id TEXT UNIQUE,
			customer_group TEXT,
			territory TEXT,
			customer_type TEXT NOT NULL DEFAULT 'Individual',
			sync_with_shopify BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE addresses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			customer_id TEXT NOT NULL,
			address_title TEXT,
			address_type TEXT NOT NULL,
			address_line1 TEXT,
			address_line2 TEXT,
			city TEXT,
			state TEXT,
			pincode TEXT,
			country TEXT,
			phone TEXT,
			email_id TEXT,
			shopify_address_id TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE territories (
			name TEXT PRIMARY KEY,
			parent_territory TEXT,
			is_group BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE shopify_settings (
			name TEXT PRIMARY KEY,
			customer_group TEXT,
			last_sync_at DATETIME,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE shopify_logs (
			id TEXT PRIMARY KEY,
			title TEXT,
			status TEXT NOT NULL,
			method TEXT,
			message TEXT,
			request_data TEXT,
			exception BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}
