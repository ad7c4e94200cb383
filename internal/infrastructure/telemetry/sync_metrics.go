package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the meter used for sync metrics
const MeterName = "shopify-sync"

// Metric attribute keys
var (
	AttrOperation = attribute.Key("operation")
	AttrOutcome   = attribute.Key("outcome")
)

// SyncMetrics records the outcome of sync runs.
type SyncMetrics struct {
	customers   metric.Int64Counter
	addresses   metric.Int64Counter
	runDuration metric.Float64Histogram
}

// NewSyncMetrics creates the sync instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	customers, err := meter.Int64Counter(
		"shopify_sync.customers",
		metric.WithDescription("Remote customers processed, by outcome"),
		metric.WithUnit("{customer}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customers counter: %w", err)
	}

	addresses, err := meter.Int64Counter(
		"shopify_sync.addresses",
		metric.WithDescription("Addresses pulled or pushed, by operation and outcome"),
		metric.WithUnit("{address}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create addresses counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram(
		"shopify_sync.run.duration",
		metric.WithDescription("Duration of a full sync run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	return &SyncMetrics{customers: customers, addresses: addresses, runDuration: runDuration}, nil
}

// RecordCustomer counts one remote customer with the given outcome (created, skipped, failed).
func (m *SyncMetrics) RecordCustomer(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.customers.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordAddress counts one address operation (create, update, pull) with its outcome.
func (m *SyncMetrics) RecordAddress(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.addresses.Add(ctx, 1, metric.WithAttributes(
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	))
}

// RecordRun records the duration of a run with its outcome (success, failed).
func (m *SyncMetrics) RecordRun(ctx context.Context, duration time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(AttrOutcome.String(outcome)))
}
