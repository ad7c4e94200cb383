package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Save(ctx context.Context, entry *integration.SyncLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindRecent(ctx context.Context, limit int) ([]integration.SyncLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.SyncLogEntry), args.Error(1)
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestShopifyLogger_LogError(t *testing.T) {
	repo := new(MockSyncLogRepository)
	zl, logs := newObservedLogger()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	l := NewShopifyLogger(repo, zl)
	l.now = func() time.Time { return fixed }

	var saved *integration.SyncLogEntry
	repo.On("Save", mock.Anything, mock.AnythingOfType("*integration.SyncLogEntry")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*integration.SyncLogEntry) }).
		Return(nil)

	entry := integration.SyncLogEntry{
		Title:       "500 Internal Server Error",
		Status:      integration.SyncLogStatusError,
		Method:      integration.MethodCreateCustomer,
		Message:     "stack",
		RequestData: `{"id":1}`,
		Exception:   true,
	}
	l.Log(context.Background(), entry)

	repo.AssertExpectations(t)
	require.NotNil(t, saved)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, fixed, saved.CreatedAt)
	assert.Equal(t, `{"id":1}`, saved.RequestData)

	errorLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errorLogs, 1)
	assert.Equal(t, "create_customer", errorLogs[0].ContextMap()["method"])
	assert.Equal(t, `{"id":1}`, errorLogs[0].ContextMap()["request_data"])
}

func TestShopifyLogger_DefaultsStatusAndLogsInfo(t *testing.T) {
	repo := new(MockSyncLogRepository)
	zl, logs := newObservedLogger()
	l := NewShopifyLogger(repo, zl)

	repo.On("Save", mock.Anything, mock.MatchedBy(func(e *integration.SyncLogEntry) bool {
		return e.Status == integration.SyncLogStatusQueued
	})).Return(nil)

	l.Log(context.Background(), integration.SyncLogEntry{Method: integration.MethodSyncCustomers})

	repo.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.InfoLevel).Len())
}

func TestShopifyLogger_SaveFailureIsSwallowed(t *testing.T) {
	repo := new(MockSyncLogRepository)
	zl, logs := newObservedLogger()
	l := NewShopifyLogger(repo, zl)

	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		l.Log(context.Background(), integration.NewErrorLogEntry(integration.MethodCreateCustomer, errors.New("boom"), "", ""))
	})
	assert.Equal(t, 1, logs.FilterMessage("Failed to persist shopify log").Len())
}

func TestShopifyLogger_CancelledContextStillPersists(t *testing.T) {
	repo := new(MockSyncLogRepository)
	l := NewShopifyLogger(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo.On("Save", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

	l.Log(ctx, integration.SyncLogEntry{Status: integration.SyncLogStatusSuccess})
	repo.AssertExpectations(t)
}

func TestShopifyLogger_NilRepository(t *testing.T) {
	zl, logs := newObservedLogger()
	l := NewShopifyLogger(nil, zl)

	l.Log(context.Background(), integration.SyncLogEntry{Status: integration.SyncLogStatusSuccess})
	assert.Equal(t, 1, logs.Len())
}

func TestShopifyLogger_CutsLongTitle(t *testing.T) {
	repo := new(MockSyncLogRepository)
	zl, _ := newObservedLogger()
	l := NewShopifyLogger(repo, zl)

	var saved *integration.SyncLogEntry
	repo.On("Save", mock.Anything, mock.AnythingOfType("*integration.SyncLogEntry")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*integration.SyncLogEntry) }).
		Return(nil)

	l.Log(context.Background(), integration.SyncLogEntry{
		Title:  strings.Repeat("ü", 300),
		Status: integration.SyncLogStatusError,
		Method: integration.MethodCreateCustomerAddress,
	})

	require.NotNil(t, saved)
	assert.Equal(t, integration.MaxLogTitleLength, utf8.RuneCountInString(saved.Title))
}
