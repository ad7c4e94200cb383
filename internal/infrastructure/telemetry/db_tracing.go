package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	DBName          string        // Database name reported on spans
	LogFullSQL      bool          // Include query variables in spans (never in production)
	SlowQueryThresh time.Duration // Queries slower than this are flagged (default: 200ms)
}

const queryStartKey = "telemetry:query_start"

// DBTracingPlugin is a GORM plugin installing otelgorm plus slow query flagging.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Name implements gorm.Plugin.
func (p *DBTracingPlugin) Name() string {
	return "telemetry:db_tracing"
}

// Initialize implements gorm.Plugin.
func (p *DBTracingPlugin) Initialize(db *gorm.DB) error {
	opts := []otelgorm.Option{}
	if p.config.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(p.config.DBName))
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", markQueryStart),
		cb.Create().After("gorm:create").Register("telemetry:after_create", p.afterQuery),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", markQueryStart),
		cb.Query().After("gorm:query").Register("telemetry:after_query", p.afterQuery),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", markQueryStart),
		cb.Update().After("gorm:update").Register("telemetry:after_update", p.afterQuery),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", markQueryStart),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", p.afterQuery),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", markQueryStart),
		cb.Row().After("gorm:row").Register("telemetry:after_row", p.afterQuery),
	)
	if err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

// afterQuery flags slow queries on the current span and in the log.
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	value, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := value.(time.Time)
	if !ok {
		return
	}

	elapsed := time.Since(start)
	if elapsed <= p.config.SlowQueryThresh {
		return
	}

	p.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("duration", elapsed),
		zap.Duration("threshold", p.config.SlowQueryThresh),
	)

	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
}
