package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/ec-shop/internal/domain/catalog"
)

// MockProductStore is an in-memory implementation of catalog.ProductStore for
// testing. It records GetProduct calls and supports seeding stock directly.
type MockProductStore struct {
	mu       sync.RWMutex
	products map[string]catalog.Product

	GetProductCalls     []string
	ChangeQuantityCalls []ChangeQuantityCall
}

// ChangeQuantityCall records parameters passed to ChangeQuantity.
type ChangeQuantityCall struct {
	Model string
	Delta int
}

func NewMockProductStore() *MockProductStore {
	return &MockProductStore{
		products: make(map[string]catalog.Product),
	}
}

// Seed adds or replaces a product directly, without recording a call.
func (m *MockProductStore) Seed(p catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.Model] = p
}

// Stock returns the current quantity for model, or -1 when absent.
func (m *MockProductStore) Stock(model string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[model]
	if !ok {
		return -1
	}
	return p.Quantity
}

func (m *MockProductStore) GetProduct(ctx context.Context, model string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetProductCalls = append(m.GetProductCalls, model)

	p, ok := m.products[model]
	if !ok {
		return nil, fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
	}
	cp := p
	return &cp, nil
}

func (m *MockProductStore) InsertProduct(ctx context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.Model]; ok {
		return fmt.Errorf("%s: %w", p.Model, catalog.ErrProductAlreadyExists)
	}
	m.products[p.Model] = *p
	return nil
}

func (m *MockProductStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		list = append(list, p)
	}
	return list, nil
}

func (m *MockProductStore) ChangeQuantity(ctx context.Context, model string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChangeQuantityCalls = append(m.ChangeQuantityCalls, ChangeQuantityCall{Model: model, Delta: delta})

	p, ok := m.products[model]
	if !ok {
		return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
	}
	p.Quantity += delta
	m.products[model] = p
	return nil
}

func (m *MockProductStore) DecrementStock(ctx context.Context, model string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrementLocked(model, qty)
}

func (m *MockProductStore) decrementLocked(model string, qty int) error {
	p, ok := m.products[model]
	if !ok {
		return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
	}
	if p.Quantity == 0 {
		return fmt.Errorf("%s: %w", model, catalog.ErrEmptyStock)
	}
	if p.Quantity < qty {
		return fmt.Errorf("%s: have %d, want %d: %w", model, p.Quantity, qty, catalog.ErrLowStock)
	}
	p.Quantity -= qty
	m.products[model] = p
	return nil
}

// DecrementAll decrements stock for every model at once, all-or-nothing,
// mirroring the transactional checkout of the Postgres store.
func (m *MockProductStore) DecrementAll(items map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for model, qty := range items {
		p, ok := m.products[model]
		if !ok {
			return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
		}
		if p.Quantity == 0 {
			return fmt.Errorf("%s: %w", model, catalog.ErrEmptyStock)
		}
		if p.Quantity < qty {
			return fmt.Errorf("%s: have %d, want %d: %w", model, p.Quantity, qty, catalog.ErrLowStock)
		}
	}
	for model, qty := range items {
		p := m.products[model]
		p.Quantity -= qty
		m.products[model] = p
	}
	return nil
}

func (m *MockProductStore) DeleteProduct(ctx context.Context, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[model]; !ok {
		return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
	}
	delete(m.products, model)
	return nil
}
