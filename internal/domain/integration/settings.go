package integration

import (
	"context"
	"time"
)

// SettingsName is the key of the single settings row
const SettingsName = "Shopify Settings"

// ShopifySettings holds the integration settings
type ShopifySettings struct {
	Name          string
	CustomerGroup string
	LastSyncAt    *time.Time
	Enabled       bool
	UpdatedAt     time.Time
}

// MarkSynced records the start time of a successful run
func (s *ShopifySettings) MarkSynced(startedAt time.Time) {
	t := startedAt
	s.LastSyncAt = &t
	s.UpdatedAt = time.Now()
}

// SettingsRepository defines the interface for settings persistence
type SettingsRepository interface {
	// Get returns the settings; shared.ErrNotFound when they were never saved
	Get(ctx context.Context) (*ShopifySettings, error)

	// Save upserts the settings
	Save(ctx context.Context, settings *ShopifySettings) error
}
