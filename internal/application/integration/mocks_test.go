package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/erp/shopify-sync/internal/domain/integration"
	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/erp/shopify-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ---------------------------------------------------------------------------
// testify mocks
// ---------------------------------------------------------------------------

// MockCustomerPlatform is a mock implementation of integration.CustomerPlatform
type MockCustomerPlatform struct {
	mock.Mock
}

func (m *MockCustomerPlatform) ListCustomers(ctx context.Context, req *integration.CustomerListRequest) (*integration.CustomerListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CustomerListResponse), args.Error(1)
}

func (m *MockCustomerPlatform) CreateCustomerAddress(ctx context.Context, customerID string, address *integration.RemoteAddress) (*integration.RemoteAddress, error) {
	args := m.Called(ctx, customerID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteAddress), args.Error(1)
}

func (m *MockCustomerPlatform) UpdateCustomerAddress(ctx context.Context, customerID string, address *integration.RemoteAddress) (*integration.RemoteAddress, error) {
	args := m.Called(ctx, customerID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteAddress), args.Error(1)
}

// MockSettingsRepository is a mock implementation of integration.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*integration.ShopifySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifySettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *integration.ShopifySettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockTerritoryRepository is a mock implementation of partner.TerritoryRepository
type MockTerritoryRepository struct {
	mock.Mock
}

func (m *MockTerritoryRepository) FindRoot(ctx context.Context) (*partner.Territory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Territory), args.Error(1)
}

// MockAddressPushSource is a mock implementation of integration.AddressPushSource
type MockAddressPushSource struct {
	mock.Mock
}

func (m *MockAddressPushSource) FindAddressesForPush(ctx context.Context, customerID partner.CustomerID, since *time.Time) ([]integration.AddressPushRow, error) {
	args := m.Called(ctx, customerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.AddressPushRow), args.Error(1)
}

func (m *MockAddressPushSource) SetShopifyAddressID(ctx context.Context, addressID uuid.UUID, shopifyAddressID string) error {
	args := m.Called(ctx, addressID, shopifyAddressID)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByName(ctx context.Context, name partner.CustomerID) (*partner.Customer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindSyncEnabled(ctx context.Context) ([]partner.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByShopifyCustomerID(ctx context.Context, shopifyCustomerID string) (bool, error) {
	args := m.Called(ctx, shopifyCustomerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockCustomerSyncer is a mock implementation of CustomerSyncer
type MockCustomerSyncer struct {
	mock.Mock
}

func (m *MockCustomerSyncer) SyncCustomers(ctx context.Context) (*CustomerSyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CustomerSyncResult), args.Error(1)
}

// MockAddressSyncer is a mock implementation of AddressSyncer
type MockAddressSyncer struct {
	mock.Mock
}

func (m *MockAddressSyncer) UpdateAddressDetails(ctx context.Context, customer *partner.Customer, since *time.Time) (*AddressSyncResult, error) {
	args := m.Called(ctx, customer, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AddressSyncResult), args.Error(1)
}

// ---------------------------------------------------------------------------
// recording audit logger
// ---------------------------------------------------------------------------

type recordingAudit struct {
	mu      sync.Mutex
	entries []integration.SyncLogEntry
}

func (a *recordingAudit) Log(_ context.Context, entry integration.SyncLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) Entries() []integration.SyncLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]integration.SyncLogEntry(nil), a.entries...)
}

// ---------------------------------------------------------------------------
// in-memory record store with transaction and savepoint semantics
// ---------------------------------------------------------------------------

type memState struct {
	customers map[partner.CustomerID]partner.Customer
	addresses map[string]partner.Address // keyed by record name
}

func newMemState() *memState {
	return &memState{
		customers: map[partner.CustomerID]partner.Customer{},
		addresses: map[string]partner.Address{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	return c
}

// memDB implements integration.TransactionScope. Work done inside Execute
// becomes visible to other readers only when fn succeeds.
type memDB struct {
	state *memState

	// customerCreateErr fails Customer creation for a Shopify id
	customerCreateErr map[string]error
	// addressCreateErr fails Address creation when it returns non-nil
	addressCreateErr func(address *partner.Address) error
	// existsErr fails the existence check for a Shopify id
	existsErr map[string]error

	commits   int
	rollbacks int
}

func newMemDB() *memDB {
	return &memDB{
		state:             newMemState(),
		customerCreateErr: map[string]error{},
		existsErr:         map[string]error{},
	}
}

func (db *memDB) Execute(ctx context.Context, fn func(tx integration.SyncTransaction) error) error {
	work := db.state.clone()
	if err := fn(&memTx{db: db, state: work}); err != nil {
		db.rollbacks++
		return err
	}
	*db.state = *work
	db.commits++
	return nil
}

func (db *memDB) Customers() partner.CustomerRepository {
	return &memCustomerRepo{db: db, state: db.state}
}

func (db *memDB) Addresses() partner.AddressRepository {
	return &memAddressRepo{db: db, state: db.state}
}

func (db *memDB) seedCustomer(c partner.Customer) {
	db.state.customers[c.Name] = c
}

func (db *memDB) seedAddress(a partner.Address) {
	db.state.addresses[a.Name] = a
}

func (db *memDB) addressesOf(id partner.CustomerID) []partner.Address {
	var out []partner.Address
	for _, a := range db.state.addresses {
		if a.CustomerID == id {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type memTx struct {
	db    *memDB
	state *memState
}

func (t *memTx) Customers() partner.CustomerRepository {
	return &memCustomerRepo{db: t.db, state: t.state}
}

func (t *memTx) Addresses() partner.AddressRepository {
	return &memAddressRepo{db: t.db, state: t.state}
}

func (t *memTx) Savepoint(ctx context.Context, fn func(tx integration.SyncTransaction) error) error {
	snapshot := t.state.clone()
	if err := fn(t); err != nil {
		*t.state = *snapshot
		return err
	}
	return nil
}

type memCustomerRepo struct {
	db    *memDB
	state *memState
}

func (r *memCustomerRepo) FindByName(_ context.Context, name partner.CustomerID) (*partner.Customer, error) {
	c, ok := r.state.customers[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r *memCustomerRepo) FindSyncEnabled(_ context.Context) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, c := range r.state.customers {
		if c.SyncWithShopify && c.IsMirrored() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCustomerRepo) ExistsByShopifyCustomerID(_ context.Context, id string) (bool, error) {
	if err := r.db.existsErr[id]; err != nil {
		return false, err
	}
	for _, c := range r.state.customers {
		if c.ShopifyID() == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCustomerRepo) Create(_ context.Context, c *partner.Customer) error {
	if err := r.db.customerCreateErr[c.ShopifyID()]; err != nil {
		return err
	}
	if _, ok := r.state.customers[c.Name]; ok {
		return fmt.Errorf("duplicate customer %s", c.Name)
	}
	r.state.customers[c.Name] = *c
	return nil
}

type memAddressRepo struct {
	db    *memDB
	state *memState
}

func (r *memAddressRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Address, error) {
	for _, a := range r.state.addresses {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAddressRepo) FindByCustomer(_ context.Context, id partner.CustomerID) ([]partner.Address, error) {
	var out []partner.Address
	for _, a := range r.state.addresses {
		if a.CustomerID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAddressRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	_, ok := r.state.addresses[name]
	return ok, nil
}

func (r *memAddressRepo) Create(_ context.Context, a *partner.Address) error {
	if r.db.addressCreateErr != nil {
		if err := r.db.addressCreateErr(a); err != nil {
			return err
		}
	}
	if _, ok := r.state.addresses[a.Name]; ok {
		return fmt.Errorf("duplicate address name %q", a.Name)
	}
	// Keep insertion order observable through CreatedAt
	a.CreatedAt = time.Unix(int64(len(r.state.addresses)), 0)
	r.state.addresses[a.Name] = *a
	return nil
}
