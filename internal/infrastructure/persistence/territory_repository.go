package persistence

import (
	"context"
	"errors"

	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTerritoryRepository implements TerritoryRepository using GORM
type GormTerritoryRepository struct {
	db *gorm.DB
}

// NewGormTerritoryRepository creates a new GormTerritoryRepository
func NewGormTerritoryRepository(db *gorm.DB) *GormTerritoryRepository {
	return &GormTerritoryRepository{db: db}
}

// FindRoot returns the territory without a parent. When the tree is empty
// the default root territory is returned.
func (r *GormTerritoryRepository) FindRoot(ctx context.Context) (*partner.Territory, error) {
	var model models.TerritoryModel
	err := r.db.WithContext(ctx).
		Where("parent_territory IS NULL OR parent_territory = ''").
		Order("name ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &partner.Territory{Name: partner.DefaultRootTerritory, IsGroup: true}, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormTerritoryRepository implements TerritoryRepository
var _ partner.TerritoryRepository = (*GormTerritoryRepository)(nil)
