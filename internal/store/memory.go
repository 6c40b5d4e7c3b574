package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/codbridge/internal/models"
)

// MemoryShopDirectory is an in-memory ShopDirectory for tests and local runs.
type MemoryShopDirectory struct {
	mu    sync.RWMutex
	shops map[string]models.Shop
}

// NewMemoryShopDirectory constructs an empty MemoryShopDirectory.
func NewMemoryShopDirectory() *MemoryShopDirectory {
	return &MemoryShopDirectory{shops: make(map[string]models.Shop)}
}

func (m *MemoryShopDirectory) FindByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shop, ok := m.shops[domain]
	if !ok {
		return nil, nil
	}
	copied := shop
	return &copied, nil
}

func (m *MemoryShopDirectory) Save(ctx context.Context, shop *models.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.shops[shop.ShopDomain]; ok {
		shop.ID = existing.ID
		shop.CreatedAt = existing.CreatedAt
	} else if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
		shop.CreatedAt = time.Now()
	}
	shop.UpdatedAt = time.Now()
	m.shops[shop.ShopDomain] = *shop
	return nil
}

func (m *MemoryShopDirectory) Deactivate(ctx context.Context, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shop, ok := m.shops[domain]; ok {
		shop.IsActive = false
		shop.AccessToken = ""
		m.shops[domain] = shop
	}
	return nil
}

// MemoryVerificationStore is an in-memory VerificationStore for tests.
type MemoryVerificationStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]models.PhoneVerification
}

// NewMemoryVerificationStore constructs an empty MemoryVerificationStore.
func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{records: make(map[uuid.UUID]models.PhoneVerification)}
}

func (m *MemoryVerificationStore) DeleteUnverified(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.records {
		if rec.Phone == phone && !rec.Verified {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *MemoryVerificationStore) Create(ctx context.Context, rec *models.PhoneVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *MemoryVerificationStore) LatestUnverified(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []models.PhoneVerification
	for _, rec := range m.records {
		if rec.Phone == phone && !rec.Verified {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	latest := matches[0]
	return &latest, nil
}

func (m *MemoryVerificationStore) Update(ctx context.Context, rec *models.PhoneVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = *rec
	return nil
}

func (m *MemoryVerificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// Count reports the number of stored records, verified or not.
func (m *MemoryVerificationStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// MemoryOrderStore is an in-memory OrderStore for tests.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders []models.Order
}

// NewMemoryOrderStore constructs an empty MemoryOrderStore.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{}
}

func (m *MemoryOrderStore) Create(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	m.orders = append(m.orders, *order)
	return nil
}

func (m *MemoryOrderStore) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []models.Order
	for _, order := range m.orders {
		if order.ShopID == shopID {
			matches = append(matches, order)
		}
	}

	total := int64(len(matches))
	if offset >= len(matches) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}

// Orders returns a snapshot of every stored order.
func (m *MemoryOrderStore) Orders() []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Order(nil), m.orders...)
}

// MemoryPixelDirectory is an in-memory PixelDirectory for tests.
type MemoryPixelDirectory struct {
	mu           sync.RWMutex
	integrations map[string]models.MetaIntegration
}

// NewMemoryPixelDirectory constructs an empty MemoryPixelDirectory.
func NewMemoryPixelDirectory() *MemoryPixelDirectory {
	return &MemoryPixelDirectory{integrations: make(map[string]models.MetaIntegration)}
}

// SetIntegration registers the active integration returned for a shop domain.
func (m *MemoryPixelDirectory) SetIntegration(shopDomain string, integration models.MetaIntegration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrations[shopDomain] = integration
}

func (m *MemoryPixelDirectory) ActiveIntegration(ctx context.Context, shopDomain string) (*models.MetaIntegration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	integration, ok := m.integrations[shopDomain]
	if !ok || !integration.IsActive {
		return nil, nil
	}
	copied := integration
	return &copied, nil
}
