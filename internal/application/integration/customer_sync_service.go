package integration

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/infrastructure/logger"
	"github.com/erp/shopify-sync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Placeholders stored when Shopify leaves a mandatory address field blank
const (
	PlaceholderAddressLine1 = "Address 1"
	PlaceholderCity         = "City"
)

// CustomerSyncService mirrors Shopify customers, with their addresses, into
// the local database.
type CustomerSyncService struct {
	platform    integration.CustomerPlatform
	customers   partner.CustomerRepository
	territories partner.TerritoryRepository
	settings    integration.SettingsRepository
	txScope     integration.TransactionScope
	audit       integration.AuditLogger
	metrics     *telemetry.SyncMetrics
	logger      *zap.Logger
	pageSize    int
}

// NewCustomerSyncService creates a new CustomerSyncService
func NewCustomerSyncService(
	platform integration.CustomerPlatform,
	customers partner.CustomerRepository,
	territories partner.TerritoryRepository,
	settings integration.SettingsRepository,
	txScope integration.TransactionScope,
	audit integration.AuditLogger,
	logger *zap.Logger,
) *CustomerSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerSyncService{
		platform:    platform,
		customers:   customers,
		territories: territories,
		settings:    settings,
		txScope:     txScope,
		audit:       audit,
		logger:      logger.Named("customer_sync"),
	}
}

// SetSyncMetrics sets the metrics recorder (optional)
func (s *CustomerSyncService) SetSyncMetrics(m *telemetry.SyncMetrics) {
	s.metrics = m
}

// SetPageSize overrides the number of customers requested per page.
// Zero leaves the choice to the platform adapter.
func (s *CustomerSyncService) SetPageSize(size int) {
	s.pageSize = size
}

// SyncCustomers creates a local customer for every Shopify customer not yet
// mirrored. A failure on one customer or address is audited and skipped.
// A quota error from Shopify, a failed page fetch and context cancellation
// abort the run; the partial result is returned along with the error.
func (s *CustomerSyncService) SyncCustomers(ctx context.Context) (*CustomerSyncResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "customer_sync.run")
	defer span.End()

	result := &CustomerSyncResult{CreatedCustomerIDs: []string{}}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("load shopify settings: %w", err)
	}
	territory, err := s.territories.FindRoot(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("load root territory: %w", err)
	}

	log := logger.WithTraceContext(ctx, s.logger)
	cursor := ""
	for {
		page, err := s.platform.ListCustomers(ctx, &integration.CustomerListRequest{
			PageSize: s.pageSize,
			Cursor:   cursor,
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return result, fmt.Errorf("list shopify customers: %w", err)
		}

		for i := range page.Customers {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := s.syncCustomer(ctx, &page.Customers[i], settings, territory, result); err != nil {
				telemetry.RecordError(span, err)
				log.Error("Customer sync aborted",
					zap.String("shopify_customer_id", page.Customers[i].ID),
					zap.Error(err),
				)
				return result, err
			}
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCreated, result.Count(),
		telemetry.SpanAttrSkipped, result.SkippedCount,
		telemetry.SpanAttrFailed, result.FailedCount,
	)
	log.Info("Customer sync finished",
		zap.Int("created", result.Count()),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("failed_addresses", result.FailedAddressCount),
	)
	return result, nil
}

// syncCustomer handles one remote customer. It only returns errors that
// must abort the run.
func (s *CustomerSyncService) syncCustomer(
	ctx context.Context,
	remote *integration.RemoteCustomer,
	settings *integration.ShopifySettings,
	territory *partner.Territory,
	result *CustomerSyncResult,
) error {
	exists, err := s.customers.ExistsByShopifyCustomerID(ctx, remote.ID)
	if err == nil && exists {
		result.SkippedCount++
		s.metrics.RecordCustomer(ctx, "skipped")
		return nil
	}
	if err == nil {
		err = s.createCustomer(ctx, remote, settings, territory, result)
	}
	if err == nil {
		result.CreatedCustomerIDs = append(result.CreatedCustomerIDs, remote.ID)
		s.metrics.RecordCustomer(ctx, "created")
		return nil
	}

	if isFatal(err) {
		return err
	}
	result.FailedCount++
	s.metrics.RecordCustomer(ctx, "failed")
	s.auditFailure(ctx, integration.MethodCreateCustomer, err, remote)
	return nil
}

// createCustomer inserts the customer and its addresses in one transaction.
// Each address runs in its own savepoint so a bad address leaves the
// customer in place.
func (s *CustomerSyncService) createCustomer(
	ctx context.Context,
	remote *integration.RemoteCustomer,
	settings *integration.ShopifySettings,
	territory *partner.Territory,
	result *CustomerSyncResult,
) error {
	if err := remote.Validate(); err != nil {
		return err
	}

	displayName := remote.DisplayName()
	customer, err := partner.NewMirroredCustomer(remote.ID, displayName, settings.CustomerGroup, territory.Name)
	if err != nil {
		return err
	}

	// Address failures are audited once the transaction has released its connection
	var addressErrs []error
	err = s.txScope.Execute(ctx, func(tx integration.SyncTransaction) error {
		addressErrs = addressErrs[:0]
		if err := tx.Customers().Create(ctx, customer); err != nil {
			return fmt.Errorf("create customer %s: %w", remote.ID, err)
		}

		for i := range remote.Addresses {
			err := tx.Savepoint(ctx, func(sp integration.SyncTransaction) error {
				return s.createAddress(ctx, sp.Addresses(), customer, remote, i)
			})
			if err == nil {
				continue
			}
			if isFatal(err) {
				return err
			}
			addressErrs = append(addressErrs, withStack(err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.FailedAddressCount += len(addressErrs)
	for _, addrErr := range addressErrs {
		s.metrics.RecordAddress(ctx, "pull", "failed")
		s.auditFailure(ctx, integration.MethodCreateCustomerAddress, addrErr, remote)
	}
	return nil
}

// createAddress mirrors remote.Addresses[index] onto customer.
func (s *CustomerSyncService) createAddress(
	ctx context.Context,
	addresses partner.AddressRepository,
	customer *partner.Customer,
	remote *integration.RemoteCustomer,
	index int,
) error {
	title, addressType, err := addressTitleAndType(ctx, addresses, customer.CustomerName, index)
	if err != nil {
		return err
	}

	address, err := partner.NewAddress(customer.Name, title, addressType)
	if err != nil {
		return err
	}

	remoteAddress := remote.Addresses[index]
	address.Line1 = orPlaceholder(remoteAddress.Address1, PlaceholderAddressLine1)
	address.Line2 = remoteAddress.Address2
	address.City = orPlaceholder(remoteAddress.City, PlaceholderCity)
	address.State = remoteAddress.Province
	address.Pincode = remoteAddress.Zip
	address.Country = remoteAddress.Country
	address.Phone = remoteAddress.Phone
	address.Email = remote.Email
	if remoteAddress.ID != "" {
		address.MarkPushed(remoteAddress.ID)
	}

	if err := addresses.Create(ctx, address); err != nil {
		return fmt.Errorf("create address %q: %w", address.Name, err)
	}
	s.metrics.RecordAddress(ctx, "pull", "success")
	return nil
}

// addressTitleAndType derives the title of a mirrored address. The title is
// the customer name unless "<name>-Billing" is taken, in which case it is
// "<name>-<index>".
func addressTitleAndType(
	ctx context.Context,
	addresses partner.AddressRepository,
	customerName string,
	index int,
) (string, partner.AddressType, error) {
	addressType := partner.AddressTypeBilling

	taken, err := addresses.ExistsByName(ctx, partner.AddressName(customerName, addressType))
	if err != nil {
		return "", addressType, err
	}
	if taken {
		return fmt.Sprintf("%s-%d", strings.TrimSpace(customerName), index), addressType, nil
	}
	return customerName, addressType, nil
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// isFatal reports errors that stop the whole run instead of one record.
func isFatal(err error) bool {
	return integration.IsQuotaExceeded(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// stackError keeps the stack of the goroutine at the point a failure was
// recorded, for failures audited later.
type stackError struct {
	err   error
	stack []byte
}

func (e *stackError) Error() string { return e.err.Error() }
func (e *stackError) Unwrap() error { return e.err }

func withStack(err error) error {
	return &stackError{err: err, stack: debug.Stack()}
}

func (s *CustomerSyncService) auditFailure(ctx context.Context, method string, err error, remote *integration.RemoteCustomer) {
	stack := debug.Stack()
	var se *stackError
	if errors.As(err, &se) {
		stack = se.stack
	}
	message := fmt.Sprintf("%v\n\n%s", err, stack)
	s.audit.Log(ctx, integration.NewErrorLogEntry(method, err, message, remote.Payload()))
}
