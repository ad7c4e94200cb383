package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type customerSyncFixture struct {
	platform    *MockCustomerPlatform
	settings    *MockSettingsRepository
	territories *MockTerritoryRepository
	db          *memDB
	audit       *recordingAudit
	service     *CustomerSyncService
}

func newCustomerSyncFixture(t *testing.T) *customerSyncFixture {
	t.Helper()
	f := &customerSyncFixture{
		platform:    new(MockCustomerPlatform),
		settings:    new(MockSettingsRepository),
		territories: new(MockTerritoryRepository),
		db:          newMemDB(),
		audit:       &recordingAudit{},
	}
	f.settings.On("Get", mock.Anything).Return(&integration.ShopifySettings{
		Name:          integration.SettingsName,
		CustomerGroup: "Retail",
		Enabled:       true,
	}, nil)
	f.territories.On("FindRoot", mock.Anything).Return(&partner.Territory{Name: "All Territories", IsGroup: true}, nil)

	f.service = NewCustomerSyncService(f.platform, f.db.Customers(), f.territories, f.settings, f.db, f.audit, nil)
	return f
}

// onePage makes the platform return customers as a single page
func (f *customerSyncFixture) onePage(customers ...integration.RemoteCustomer) {
	f.platform.On("ListCustomers", mock.Anything, mock.MatchedBy(func(r *integration.CustomerListRequest) bool {
		return r.Cursor == ""
	})).Return(&integration.CustomerListResponse{Customers: customers}, nil).Once()
}

func remoteCustomer(id, first, last, email string, addresses ...integration.RemoteAddress) integration.RemoteCustomer {
	return integration.RemoteCustomer{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Email:     email,
		Addresses: addresses,
		Raw:       []byte(`{"id":` + id + `}`),
	}
}

func mirrored(id, name string) partner.Customer {
	c, _ := partner.NewMirroredCustomer(id, name, "Retail", "All Territories")
	return *c
}

func TestSyncCustomers_SkipsAlreadyMirroredCustomers(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.db.seedCustomer(mirrored("1", "Existing"))
	f.onePage(
		remoteCustomer("1", "Existing", "", "e@example.com", integration.RemoteAddress{Address1: "x"}),
		remoteCustomer("2", "New", "One", "n@example.com"),
	)

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, result.CreatedCustomerIDs)
	assert.Equal(t, 1, result.Count())
	assert.Equal(t, 1, result.SkippedCount)
	assert.Len(t, f.db.state.customers, 2)
	assert.Empty(t, f.db.addressesOf("1"), "existing customer gets no mirrored addresses")
	assert.Equal(t, 1, f.db.commits)
}

func TestSyncCustomers_CreatesMirroredCustomer(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.onePage(remoteCustomer("207119551", "John", "Doe", "john@example.com",
		integration.RemoteAddress{ID: "555", Address1: "1 Main St", Address2: "Apt 2", City: "Ottawa", Province: "Ontario", Country: "Canada", Zip: "K1A 0B1", Phone: "555-0100"},
	))

	_, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)

	c := f.db.state.customers["207119551"]
	assert.Equal(t, "John Doe", c.CustomerName)
	assert.Equal(t, "207119551", c.ShopifyID())
	assert.Equal(t, "Retail", c.CustomerGroup)
	assert.Equal(t, "All Territories", c.Territory)
	assert.Equal(t, partner.CustomerTypeIndividual, c.CustomerType)
	assert.True(t, c.SyncWithShopify)

	addresses := f.db.addressesOf("207119551")
	require.Len(t, addresses, 1)
	a := addresses[0]
	assert.Equal(t, "John Doe", a.Title)
	assert.Equal(t, "John Doe-Billing", a.Name)
	assert.Equal(t, partner.AddressTypeBilling, a.Type)
	assert.Equal(t, "1 Main St", a.Line1)
	assert.Equal(t, "Apt 2", a.Line2)
	assert.Equal(t, "Ottawa", a.City)
	assert.Equal(t, "Ontario", a.State)
	assert.Equal(t, "K1A 0B1", a.Pincode)
	assert.Equal(t, "Canada", a.Country)
	assert.Equal(t, "555-0100", a.Phone)
	assert.Equal(t, "john@example.com", a.Email)
	require.NotNil(t, a.ShopifyAddressID)
	assert.Equal(t, "555", *a.ShopifyAddressID)
}

func TestSyncCustomers_DisplayName(t *testing.T) {
	tests := []struct {
		name   string
		remote integration.RemoteCustomer
		want   string
	}{
		{"first and last", remoteCustomer("1", "John", "Doe", "j@example.com"), "John Doe"},
		{"no names falls back to email", remoteCustomer("2", "", "", "anon@example.com"), "anon@example.com"},
		{"last name only falls back to email", remoteCustomer("3", "", "Doe", "doe@example.com"), "doe@example.com"},
		{"missing last name keeps trailing space", remoteCustomer("4", "Jane", "", "jane@example.com"), "Jane "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCustomerSyncFixture(t)
			f.onePage(tt.remote)

			_, err := f.service.SyncCustomers(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.db.state.customers[partner.CustomerID(tt.remote.ID)].CustomerName)
		})
	}
}

func TestSyncCustomers_AddressTitleCollision(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.db.seedCustomer(mirrored("10", "John Doe"))
	existing, err := partner.NewAddress("10", "John Doe", partner.AddressTypeBilling)
	require.NoError(t, err)
	f.db.seedAddress(*existing)

	f.onePage(remoteCustomer("11", "John", "Doe", "j2@example.com",
		integration.RemoteAddress{Address1: "first"},
		integration.RemoteAddress{Address1: "second"},
	))

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"11"}, result.CreatedCustomerIDs)

	addresses := f.db.addressesOf("11")
	require.Len(t, addresses, 2)
	assert.Equal(t, "John Doe-0", addresses[0].Title)
	assert.Equal(t, "first", addresses[0].Line1)
	assert.Equal(t, "John Doe-1", addresses[1].Title)
	assert.Equal(t, "second", addresses[1].Line1)
}

func TestSyncCustomers_SecondAddressOfNewCustomerGetsIndexedTitle(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.onePage(remoteCustomer("12", "Jane", "Roe", "jr@example.com",
		integration.RemoteAddress{Address1: "home"},
		integration.RemoteAddress{Address1: "work"},
	))

	_, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)

	addresses := f.db.addressesOf("12")
	require.Len(t, addresses, 2)
	assert.Equal(t, "Jane Roe", addresses[0].Title)
	assert.Equal(t, "Jane Roe-1", addresses[1].Title)
}

func TestSyncCustomers_BlankAddressFieldsGetPlaceholders(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.onePage(remoteCustomer("20", "Ann", "Lee", "ann@example.com",
		integration.RemoteAddress{Address1: "", City: "  ", Country: "Canada"},
	))

	_, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)

	addresses := f.db.addressesOf("20")
	require.Len(t, addresses, 1)
	assert.Equal(t, PlaceholderAddressLine1, addresses[0].Line1)
	assert.Equal(t, "Address 1", addresses[0].Line1)
	assert.Equal(t, "City", addresses[0].City)
	assert.Nil(t, addresses[0].ShopifyAddressID)
}

func TestSyncCustomers_QuotaErrorAbortsRun(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.db.customerCreateErr["2"] = integration.NewPlatformError(402, "402 Payment Required", "")
	f.onePage(
		remoteCustomer("1", "A", "", ""),
		remoteCustomer("2", "B", "", ""),
		remoteCustomer("3", "C", "", ""),
	)

	result, err := f.service.SyncCustomers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, integration.ErrPlatformQuotaExceeded))
	assert.True(t, strings.HasPrefix(err.Error(), "create customer 2: 402 Payment Required"))

	assert.Equal(t, []string{"1"}, result.CreatedCustomerIDs)
	_, created3 := f.db.state.customers["3"]
	assert.False(t, created3, "customers after the quota error are not processed")
	assert.Empty(t, f.audit.Entries())
}

func TestSyncCustomers_OtherErrorsAreLoggedAndSkipped(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.db.customerCreateErr["2"] = integration.NewPlatformError(500, "500 Server Error", "")
	f.onePage(
		remoteCustomer("1", "A", "", ""),
		remoteCustomer("2", "B", "", ""),
		remoteCustomer("3", "C", "", ""),
	)

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, result.CreatedCustomerIDs)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, 1, f.db.rollbacks)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "create customer 2: 500 Server Error", e.Title)
	assert.Equal(t, integration.SyncLogStatusError, e.Status)
	assert.Equal(t, integration.MethodCreateCustomer, e.Method)
	assert.Equal(t, `{"id":2}`, e.RequestData)
	assert.True(t, e.Exception)
	assert.Contains(t, e.Message, "goroutine", "message carries the stack trace")
}

func TestSyncCustomers_ExistenceCheckFailureIsRecoverable(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.db.existsErr["1"] = errors.New("connection reset")
	f.onePage(remoteCustomer("1", "A", "", ""), remoteCustomer("2", "B", "", ""))

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, result.CreatedCustomerIDs)
	assert.Equal(t, 1, result.FailedCount)
}

func TestSyncCustomers_InvalidRemoteCustomerIsLogged(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.onePage(remoteCustomer("", "No", "Id", ""))

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count())
	assert.Equal(t, 1, result.FailedCount)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Title, "invalid remote customer")
}

func TestSyncCustomers_AddressFailureKeepsCustomer(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.db.addressCreateErr = func(a *partner.Address) error {
		if a.Line1 == "bad" {
			return errors.New("duplicate key value violates unique constraint")
		}
		return nil
	}
	f.onePage(remoteCustomer("30", "Max", "Mustermann", "max@example.com",
		integration.RemoteAddress{Address1: "bad"},
		integration.RemoteAddress{Address1: "good"},
	))

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"30"}, result.CreatedCustomerIDs)
	assert.Equal(t, 1, result.FailedAddressCount)
	_, ok := f.db.state.customers["30"]
	assert.True(t, ok)

	addresses := f.db.addressesOf("30")
	require.Len(t, addresses, 1)
	assert.Equal(t, "good", addresses[0].Line1)
	assert.Equal(t, "Max Mustermann", addresses[0].Title, "failed first address left the canonical name free")

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.MethodCreateCustomerAddress, entries[0].Method)
	assert.Contains(t, entries[0].RequestData, `"id":30`)
}

func TestSyncCustomers_Pagination(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.service.SetPageSize(2)

	f.platform.On("ListCustomers", mock.Anything, &integration.CustomerListRequest{PageSize: 2}).
		Return(&integration.CustomerListResponse{
			Customers:  []integration.RemoteCustomer{remoteCustomer("1", "A", "", ""), remoteCustomer("2", "B", "", "")},
			NextCursor: "page-2",
			HasMore:    true,
		}, nil).Once()
	f.platform.On("ListCustomers", mock.Anything, &integration.CustomerListRequest{PageSize: 2, Cursor: "page-2"}).
		Return(&integration.CustomerListResponse{
			Customers: []integration.RemoteCustomer{remoteCustomer("3", "C", "", "")},
		}, nil).Once()

	result, err := f.service.SyncCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, result.CreatedCustomerIDs)
	f.platform.AssertExpectations(t)
}

func TestSyncCustomers_PageErrorAborts(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.platform.On("ListCustomers", mock.Anything, mock.Anything).
		Return(nil, integration.ErrPlatformUnavailable).Once()

	result, err := f.service.SyncCustomers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
	assert.Equal(t, 0, result.Count())
}

func TestSyncCustomers_SettingsErrorAborts(t *testing.T) {
	platform := new(MockCustomerPlatform)
	settings := new(MockSettingsRepository)
	settings.On("Get", mock.Anything).Return(nil, errors.New("no settings"))
	db := newMemDB()

	service := NewCustomerSyncService(platform, db.Customers(), new(MockTerritoryRepository), settings, db, &recordingAudit{}, nil)
	_, err := service.SyncCustomers(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load shopify settings")
	platform.AssertNotCalled(t, "ListCustomers", mock.Anything, mock.Anything)
}

func TestSyncCustomers_CancelledContext(t *testing.T) {
	f := newCustomerSyncFixture(t)
	f.onePage(remoteCustomer("1", "A", "", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.SyncCustomers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.db.state.customers)
}
