package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/domain/shared"
	"github.com/erp/shopify-sync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAddressRepository implements AddressRepository and AddressPushSource using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormAddressRepository) WithTx(tx *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: tx}
}

// FindByID finds an address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Address, error) {
	var model models.AddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer finds all addresses owned by a customer
func (r *GormAddressRepository) FindByCustomer(ctx context.Context, customerID partner.CustomerID) ([]partner.Address, error) {
	var addressModels []models.AddressModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID.String()).
		Order("created_at ASC").
		Find(&addressModels).Error; err != nil {
		return nil, err
	}

	addresses := make([]partner.Address, len(addressModels))
	for i, model := range addressModels {
		addresses[i] = *model.ToDomain()
	}
	return addresses, nil
}

// ExistsByName checks if an address with the given record name exists
func (r *GormAddressRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AddressModel{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new address
func (r *GormAddressRepository) Create(ctx context.Context, address *partner.Address) error {
	model := models.AddressModelFromDomain(address)
	return r.db.WithContext(ctx).Create(model).Error
}

// addressPushRow is the projection read by FindAddressesForPush
type addressPushRow struct {
	ID               uuid.UUID
	Address1         string
	Address2         string
	City             string
	Province         string
	Country          string
	Zip              string
	ShopifyAddressID *string
}

// FindAddressesForPush returns the customer's addresses modified at or after
// since, with columns renamed to the Shopify field names.
func (r *GormAddressRepository) FindAddressesForPush(ctx context.Context, customerID partner.CustomerID, since *time.Time) ([]integration.AddressPushRow, error) {
	query := r.db.WithContext(ctx).Model(&models.AddressModel{}).
		Select("id, address_line1 AS address1, address_line2 AS address2, city, state AS province, country, pincode AS zip, shopify_address_id").
		Where("customer_id = ?", customerID.String())
	if since != nil {
		query = query.Where("updated_at >= ?", *since)
	}

	var rows []addressPushRow
	if err := query.Order("created_at ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]integration.AddressPushRow, len(rows))
	for i, row := range rows {
		remoteID := ""
		if row.ShopifyAddressID != nil {
			remoteID = *row.ShopifyAddressID
		}
		result[i] = integration.AddressPushRow{
			AddressID: row.ID,
			Address: integration.RemoteAddress{
				ID:       remoteID,
				Address1: row.Address1,
				Address2: row.Address2,
				City:     row.City,
				Province: row.Province,
				Country:  row.Country,
				Zip:      row.Zip,
			},
		}
	}
	return result, nil
}

// SetShopifyAddressID stores the Shopify id of a pushed address. updated_at is
// left untouched so the address is not selected again by the next push.
func (r *GormAddressRepository) SetShopifyAddressID(ctx context.Context, addressID uuid.UUID, shopifyAddressID string) error {
	result := r.db.WithContext(ctx).Model(&models.AddressModel{}).
		Where("id = ?", addressID).
		UpdateColumn("shopify_address_id", shopifyAddressID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("address " + addressID.String())
	}
	return nil
}

// Ensure GormAddressRepository implements the address ports
var (
	_ partner.AddressRepository     = (*GormAddressRepository)(nil)
	_ integration.AddressPushSource = (*GormAddressRepository)(nil)
)
