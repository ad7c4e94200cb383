package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/infrastructure/logger"
	"github.com/erp/shopify-sync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CustomerSyncer is the pull half of a run
type CustomerSyncer interface {
	SyncCustomers(ctx context.Context) (*CustomerSyncResult, error)
}

// AddressSyncer is the push half of a run
type AddressSyncer interface {
	UpdateAddressDetails(ctx context.Context, customer *partner.Customer, since *time.Time) (*AddressSyncResult, error)
}

var (
	_ CustomerSyncer = (*CustomerSyncService)(nil)
	_ AddressSyncer  = (*AddressSyncService)(nil)
)

// SyncRunner performs one full pass: pull customers, then push the
// addresses of every sync-enabled customer changed since the last run.
type SyncRunner struct {
	customerSync CustomerSyncer
	addressSync  AddressSyncer
	customers    partner.CustomerRepository
	settings     integration.SettingsRepository
	audit        integration.AuditLogger
	metrics      *telemetry.SyncMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewSyncRunner creates a new SyncRunner
func NewSyncRunner(
	customerSync CustomerSyncer,
	addressSync AddressSyncer,
	customers partner.CustomerRepository,
	settings integration.SettingsRepository,
	audit integration.AuditLogger,
	logger *zap.Logger,
) *SyncRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncRunner{
		customerSync: customerSync,
		addressSync:  addressSync,
		customers:    customers,
		settings:     settings,
		audit:        audit,
		logger:       logger.Named("sync_runner"),
		now:          time.Now,
	}
}

// SetSyncMetrics sets the metrics recorder (optional)
func (r *SyncRunner) SetSyncMetrics(m *telemetry.SyncMetrics) {
	r.metrics = m
}

// Run performs one sync pass. Nothing is called on Shopify when the
// integration is disabled. LastSyncAt moves to the start of the run only
// when the whole pass succeeds.
func (r *SyncRunner) Run(ctx context.Context) (*SyncSummary, error) {
	ctx, log := logger.WithRunID(ctx, r.logger, uuid.NewString())
	ctx, span := telemetry.StartSpan(ctx, "shopify_sync.run")
	defer span.End()

	summary := &SyncSummary{StartedAt: r.now()}

	settings, err := r.settings.Get(ctx)
	if err != nil {
		return r.fail(ctx, span, summary, integration.MethodSyncCustomers, fmt.Errorf("load shopify settings: %w", err))
	}
	if !settings.Enabled {
		summary.Skipped = true
		summary.FinishedAt = r.now()
		log.Info("Shopify sync disabled, skipping run")
		return summary, nil
	}

	customerResult, err := r.customerSync.SyncCustomers(ctx)
	summary.CustomerResult = customerResult
	if customerResult != nil {
		summary.Customers = customerResult.Count()
	}
	if err != nil {
		return r.fail(ctx, span, summary, integration.MethodSyncCustomers, err)
	}

	customers, err := r.customers.FindSyncEnabled(ctx)
	if err != nil {
		return r.fail(ctx, span, summary, integration.MethodUpdateAddressDetails, fmt.Errorf("load sync-enabled customers: %w", err))
	}
	for i := range customers {
		pushed, err := r.addressSync.UpdateAddressDetails(ctx, &customers[i], settings.LastSyncAt)
		if pushed != nil {
			summary.AddressesCreated += pushed.Created
			summary.AddressesUpdated += pushed.Updated
			if pushed.Total() > 0 {
				summary.PushedCustomers++
			}
		}
		if err != nil {
			return r.fail(ctx, span, summary, integration.MethodUpdateAddressDetails, err)
		}
	}

	settings.MarkSynced(summary.StartedAt)
	if err := r.settings.Save(ctx, settings); err != nil {
		return r.fail(ctx, span, summary, integration.MethodSyncCustomers, fmt.Errorf("save last sync time: %w", err))
	}

	summary.FinishedAt = r.now()
	r.metrics.RecordRun(ctx, summary.Duration(), "success")
	log.Info("Shopify sync finished",
		zap.Int("customers", summary.Customers),
		zap.Int("addresses_created", summary.AddressesCreated),
		zap.Int("addresses_updated", summary.AddressesUpdated),
		zap.Duration("duration", summary.Duration()),
	)
	return summary, nil
}

// fail closes the summary, audits err under method and returns it.
func (r *SyncRunner) fail(ctx context.Context, span trace.Span, summary *SyncSummary, method string, err error) (*SyncSummary, error) {
	summary.FinishedAt = r.now()
	telemetry.RecordError(span, err)
	r.metrics.RecordRun(ctx, summary.Duration(), "failed")
	r.audit.Log(ctx, integration.NewErrorLogEntry(method, err, err.Error(), ""))
	logger.FromContext(ctx).Error("Shopify sync failed", zap.String("method", method), zap.Error(err))
	return summary, err
}
