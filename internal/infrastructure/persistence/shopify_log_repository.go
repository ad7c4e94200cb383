package persistence

import (
	"context"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultRecentLogLimit caps FindRecent when no positive limit is given
const defaultRecentLogLimit = 50

// GormShopifyLogRepository implements SyncLogRepository using GORM
type GormShopifyLogRepository struct {
	db *gorm.DB
}

// NewGormShopifyLogRepository creates a new GormShopifyLogRepository
func NewGormShopifyLogRepository(db *gorm.DB) *GormShopifyLogRepository {
	return &GormShopifyLogRepository{db: db}
}

// Save inserts a log entry, assigning an ID when missing
func (r *GormShopifyLogRepository) Save(ctx context.Context, entry *integration.SyncLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	model := models.ShopifyLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindRecent returns the newest entries first
func (r *GormShopifyLogRepository) FindRecent(ctx context.Context, limit int) ([]integration.SyncLogEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLogLimit
	}

	var logModels []models.ShopifyLogModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]integration.SyncLogEntry, len(logModels))
	for i := range logModels {
		entries[i] = logModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormShopifyLogRepository implements SyncLogRepository
var _ integration.SyncLogRepository = (*GormShopifyLogRepository)(nil)
