package models

import (
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
)

// ShopifySettingsModel is the persistence model for the single settings row.
type ShopifySettingsModel struct {
	Name          string     `gorm:"type:varchar(140);primary_key"`
	CustomerGroup string     `gorm:"type:varchar(140)"`
	LastSyncAt    *time.Time
	Enabled       bool       `gorm:"not null;default:true"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShopifySettingsModel) TableName() string {
	return "shopify_settings"
}

// ToDomain converts the persistence model to domain ShopifySettings.
func (m *ShopifySettingsModel) ToDomain() *integration.ShopifySettings {
	return &integration.ShopifySettings{
		Name:          m.Name,
		CustomerGroup: m.CustomerGroup,
		LastSyncAt:    m.LastSyncAt,
		Enabled:       m.Enabled,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from domain ShopifySettings.
func (m *ShopifySettingsModel) FromDomain(s *integration.ShopifySettings) {
	m.Name = s.Name
	if m.Name == "" {
		m.Name = integration.SettingsName
	}
	m.CustomerGroup = s.CustomerGroup
	m.LastSyncAt = s.LastSyncAt
	m.Enabled = s.Enabled
	m.UpdatedAt = s.UpdatedAt
}

// ShopifyLogModel is the persistence model for a SyncLogEntry.
type ShopifyLogModel struct {
	BaseModel
	Title       string                    `gorm:"type:varchar(255)"`
	Status      integration.SyncLogStatus `gorm:"type:varchar(20);not null;index"`
	Method      string                    `gorm:"type:varchar(140);index"`
	Message     string                    `gorm:"type:text"`
	RequestData string                    `gorm:"type:text"`
	Exception   bool                      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ShopifyLogModel) TableName() string {
	return "shopify_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry.
func (m *ShopifyLogModel) ToDomain() integration.SyncLogEntry {
	return integration.SyncLogEntry{
		ID:          m.ID,
		Title:       m.Title,
		Status:      m.Status,
		Method:      m.Method,
		Message:     m.Message,
		RequestData: m.RequestData,
		Exception:   m.Exception,
		CreatedAt:   m.CreatedAt,
	}
}

// ShopifyLogModelFromDomain creates a new persistence model from a domain SyncLogEntry.
func ShopifyLogModelFromDomain(e *integration.SyncLogEntry) *ShopifyLogModel {
	m := &ShopifyLogModel{
		Title:       e.Title,
		Status:      e.Status,
		Method:      e.Method,
		Message:     e.Message,
		RequestData: e.RequestData,
		Exception:   e.Exception,
	}
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.CreatedAt
	return m
}
