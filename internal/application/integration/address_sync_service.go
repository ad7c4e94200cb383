package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/infrastructure/logger"
	"github.com/erp/shopify-sync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrCustomerNotMirrored is returned when pushing addresses of a customer without a Shopify id
var ErrCustomerNotMirrored = errors.New("integration: customer not mirrored on shopify")

// AddressSyncService pushes locally created or edited addresses to Shopify
type AddressSyncService struct {
	platform integration.CustomerPlatform
	source   integration.AddressPushSource
	metrics  *telemetry.SyncMetrics
	logger   *zap.Logger
}

// NewAddressSyncService creates a new AddressSyncService
func NewAddressSyncService(
	platform integration.CustomerPlatform,
	source integration.AddressPushSource,
	logger *zap.Logger,
) *AddressSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressSyncService{
		platform: platform,
		source:   source,
		logger:   logger.Named("address_sync"),
	}
}

// SetSyncMetrics sets the metrics recorder (optional)
func (s *AddressSyncService) SetSyncMetrics(m *telemetry.SyncMetrics) {
	s.metrics = m
}

// UpdateAddressDetails pushes the customer's addresses modified at or after
// since (all of them when since is nil). Addresses that already carry a
// Shopify id are updated, the others are created and their new id stored.
// The first error stops the push and is returned.
func (s *AddressSyncService) UpdateAddressDetails(
	ctx context.Context,
	customer *partner.Customer,
	since *time.Time,
) (*AddressSyncResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "address_sync.push",
		telemetry.SpanAttrCustomerID, customer.Name.String(),
	)
	defer span.End()

	result := &AddressSyncResult{}

	remoteCustomerID := customer.ShopifyID()
	if remoteCustomerID == "" {
		err := fmt.Errorf("%w: customer %s is not linked to shopify", ErrCustomerNotMirrored, customer.Name)
		telemetry.RecordError(span, err)
		return result, err
	}

	rows, err := s.source.FindAddressesForPush(ctx, customer.Name, since)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("find addresses of %s: %w", customer.Name, err)
	}

	log := logger.WithTraceContext(ctx, s.logger).With(zap.String("customer", customer.Name.String()))
	for i := range rows {
		row := &rows[i]
		if row.IsNew() {
			err = s.create(ctx, remoteCustomerID, row)
		} else {
			err = s.update(ctx, remoteCustomerID, row)
		}
		if err != nil {
			telemetry.RecordError(span, err)
			return result, err
		}
		if row.IsNew() {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if result.Total() > 0 {
		log.Info("Addresses pushed",
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
		)
	}
	return result, nil
}

func (s *AddressSyncService) create(ctx context.Context, customerID string, row *integration.AddressPushRow) error {
	created, err := s.platform.CreateCustomerAddress(ctx, customerID, &row.Address)
	if err != nil {
		s.metrics.RecordAddress(ctx, "create", "failed")
		return fmt.Errorf("create shopify address for %s: %w", customerID, err)
	}
	if err := s.source.SetShopifyAddressID(ctx, row.AddressID, created.ID); err != nil {
		s.metrics.RecordAddress(ctx, "create", "failed")
		return fmt.Errorf("store shopify address id %s: %w", created.ID, err)
	}
	s.metrics.RecordAddress(ctx, "create", "success")
	return nil
}

func (s *AddressSyncService) update(ctx context.Context, customerID string, row *integration.AddressPushRow) error {
	if _, err := s.platform.UpdateCustomerAddress(ctx, customerID, &row.Address); err != nil {
		s.metrics.RecordAddress(ctx, "update", "failed")
		return fmt.Errorf("update shopify address %s: %w", row.Address.ID, err)
	}
	s.metrics.RecordAddress(ctx, "update", "success")
	return nil
}
