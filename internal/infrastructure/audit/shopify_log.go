// Package audit records Shopify integration events as log lines and as
// persisted shopify_logs rows.
package audit

import (
	"context"
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShopifyLogger implements integration.AuditLogger. Entries are written to
// the zap logger and saved through the repository. A failed save is logged
// and otherwise ignored.
type ShopifyLogger struct {
	repo   integration.SyncLogRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ integration.AuditLogger = (*ShopifyLogger)(nil)

// NewShopifyLogger creates a ShopifyLogger. repo may be nil, in which case
// entries only go to the log.
func NewShopifyLogger(repo integration.SyncLogRepository, logger *zap.Logger) *ShopifyLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopifyLogger{
		repo:   repo,
		logger: logger.Named("shopify_log"),
		now:    time.Now,
	}
}

// Log records entry.
func (l *ShopifyLogger) Log(ctx context.Context, entry integration.SyncLogEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now()
	}
	if entry.Status == "" {
		entry.Status = integration.SyncLogStatusQueued
	}
	entry.Title = integration.TruncateLogTitle(entry.Title)

	fields := []zap.Field{
		zap.String("log_id", entry.ID.String()),
		zap.String("method", entry.Method),
		zap.String("status", entry.Status.String()),
		zap.String("title", entry.Title),
	}
	if entry.Status == integration.SyncLogStatusError {
		l.logger.Error("Shopify sync error", append(fields,
			zap.String("message", entry.Message),
			zap.String("request_data", entry.RequestData),
		)...)
	} else {
		l.logger.Info("Shopify sync event", fields...)
	}

	if l.repo == nil {
		return
	}
	// The row is kept even when the run that produced it is cancelled.
	if err := l.repo.Save(context.WithoutCancel(ctx), &entry); err != nil {
		l.logger.Warn("Failed to persist shopify log", zap.String("log_id", entry.ID.String()), zap.Error(err))
	}
}
