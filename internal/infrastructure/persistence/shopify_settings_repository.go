package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/shared"
	"github.com/erp/shopify-sync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShopifySettingsRepository implements SettingsRepository using GORM
type GormShopifySettingsRepository struct {
	db *gorm.DB
}

// NewGormShopifySettingsRepository creates a new GormShopifySettingsRepository
func NewGormShopifySettingsRepository(db *gorm.DB) *GormShopifySettingsRepository {
	return &GormShopifySettingsRepository{db: db}
}

// Get returns the settings row
func (r *GormShopifySettingsRepository) Get(ctx context.Context) (*integration.ShopifySettings, error) {
	var model models.ShopifySettingsModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", integration.SettingsName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the settings row
func (r *GormShopifySettingsRepository) Save(ctx context.Context, settings *integration.ShopifySettings) error {
	var model models.ShopifySettingsModel
	model.FromDomain(settings)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now()
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"customer_group", "last_sync_at", "enabled", "updated_at"}),
	}).Create(&model).Error
}

// Ensure GormShopifySettingsRepository implements SettingsRepository
var _ integration.SettingsRepository = (*GormShopifySettingsRepository)(nil)
