package cli

import (
	"context"
	"errors"
	"fmt"

	appintegration "github.com/erp/shopify-sync/internal/application/integration"
	"github.com/erp/shopify-sync/internal/infrastructure/audit"
	"github.com/erp/shopify-sync/internal/infrastructure/config"
	"github.com/erp/shopify-sync/internal/infrastructure/ecommerce"
	"github.com/erp/shopify-sync/internal/infrastructure/logger"
	"github.com/erp/shopify-sync/internal/infrastructure/persistence"
	"github.com/erp/shopify-sync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wired dependencies of a sync command
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	telemetry *telemetry.Providers
	db        *persistence.Database

	customerSync *appintegration.CustomerSyncService
	addressSync  *appintegration.AddressSyncService
	runner       *appintegration.SyncRunner

	customers *persistence.GormCustomerRepository
	logs      *persistence.GormShopifyLogRepository
}

// newBaseApp sets up logging, telemetry and the database
func newBaseApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	bootLog, err := logger.New(logConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.telemetry, err = telemetry.Setup(ctx, telemetryConfig(cfg), bootLog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a.log = bootLog
	if a.telemetry.LogsEnabled() {
		level, _ := logger.ParseLevel(cfg.Telemetry.LogsLevel)
		a.log = telemetry.NewBridgedLogger(bootLog, telemetry.NewZapOTELCore(a.telemetry, level))
	}

	opts := []persistence.DatabaseOption{
		persistence.WithLogger(logger.NewGormLogger(a.log, logger.MapGormLogLevel(cfg.Database.LogLevel),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		opts = append(opts, persistence.WithPlugins(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			DBName:          cfg.Database.DBName,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, a.log)))
	}

	a.db, err = persistence.NewDatabase(&cfg.Database, opts...)
	if err != nil {
		return nil, errors.Join(err, a.telemetry.Shutdown(ctx))
	}
	return a, nil
}

// newSyncApp additionally wires the Shopify adapter and the sync services
func newSyncApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Shopify.Validate(); err != nil {
		return nil, err
	}

	a, err := newBaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	adapter, err := ecommerce.NewShopifyAdapter(shopifyConfig(&cfg.Shopify), a.log)
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}

	a.wire(a.db.DB, adapter)

	metrics, err := telemetry.NewSyncMetrics(a.telemetry.Meter(telemetry.MeterName))
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}
	a.customerSync.SetSyncMetrics(metrics)
	a.addressSync.SetSyncMetrics(metrics)
	a.runner.SetSyncMetrics(metrics)
	return a, nil
}

// wire builds repositories and services on db and platform
func (a *app) wire(db *gorm.DB, platform *ecommerce.ShopifyAdapter) {
	a.customers = persistence.NewGormCustomerRepository(db)
	a.logs = persistence.NewGormShopifyLogRepository(db)
	settings := persistence.NewGormShopifySettingsRepository(db)
	auditLog := audit.NewShopifyLogger(a.logs, a.log)

	a.customerSync = appintegration.NewCustomerSyncService(
		platform,
		a.customers,
		persistence.NewGormTerritoryRepository(db),
		settings,
		persistence.NewGormTransactionScope(db),
		auditLog,
		a.log,
	)
	a.customerSync.SetPageSize(a.cfg.Shopify.PageSize)
	a.addressSync = appintegration.NewAddressSyncService(platform, persistence.NewGormAddressRepository(db), a.log)
	a.runner = appintegration.NewSyncRunner(a.customerSync, a.addressSync, a.customers, settings, auditLog, a.log)
}

// Close releases the database and flushes telemetry and logs
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(context.WithoutCancel(ctx)))
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return errors.Join(errs...)
}

func logConfig(cfg *config.Config) *logger.Config {
	lc := logger.DefaultConfig()
	if cfg.App.Env == "production" {
		lc = logger.ProductionConfig()
	}
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	lc.Output = cfg.Log.Output
	return lc
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}
}

func shopifyConfig(s *config.ShopifyConfig) *ecommerce.ShopifyConfig {
	return &ecommerce.ShopifyConfig{
		ShopDomain:     s.ShopDomain,
		AccessToken:    s.AccessToken,
		APIKey:         s.APIKey,
		Password:       s.Password,
		APIVersion:     s.APIVersion,
		TimeoutSeconds: s.TimeoutSeconds,
		PageSize:       s.PageSize,
		MaxRetries:     s.MaxRetries,
	}
}
