package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProductStore is a minimal in-memory ProductStore. The full-featured mock
// lives in internal/infrastructure/store/mocks; importing it here would create
// an import cycle with this package.
type memProductStore struct {
	products map[string]Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: make(map[string]Product)}
}

func (m *memProductStore) GetProduct(ctx context.Context, model string) (*Product, error) {
	p, ok := m.products[model]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := p
	return &cp, nil
}

func (m *memProductStore) InsertProduct(ctx context.Context, p *Product) error {
	if _, ok := m.products[p.Model]; ok {
		return ErrProductAlreadyExists
	}
	m.products[p.Model] = *p
	return nil
}

func (m *memProductStore) ListProducts(ctx context.Context) ([]Product, error) {
	list := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		list = append(list, p)
	}
	return list, nil
}

func (m *memProductStore) ChangeQuantity(ctx context.Context, model string, delta int) error {
	p, ok := m.products[model]
	if !ok {
		return ErrProductNotFound
	}
	p.Quantity += delta
	m.products[model] = p
	return nil
}

func (m *memProductStore) DecrementStock(ctx context.Context, model string, qty int) error {
	p, ok := m.products[model]
	if !ok {
		return ErrProductNotFound
	}
	if p.Quantity == 0 {
		return ErrEmptyStock
	}
	if p.Quantity < qty {
		return ErrLowStock
	}
	p.Quantity -= qty
	m.products[model] = p
	return nil
}

func (m *memProductStore) DeleteProduct(ctx context.Context, model string) error {
	if _, ok := m.products[model]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, model)
	return nil
}

func newTestCatalogService() (*Service, *memProductStore) {
	store := newMemProductStore()
	return NewService(store), store
}

func validProduct(model string) *Product {
	return &Product{
		Model:        model,
		Category:     CategoryLaptop,
		SellingPrice: decimal.RequireFromString("1299.00"),
		ArrivalDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Details:      "13 inch, 16GB RAM",
		Quantity:     4,
	}
}

// ============================================
// Register Tests
// ============================================

func TestService_Register_Success(t *testing.T) {
	service, store := newTestCatalogService()
	ctx := context.Background()

	err := service.Register(ctx, validProduct("macbook-air"))

	require.NoError(t, err)
	assert.Contains(t, store.products, "macbook-air")
}

func TestService_Register_Duplicate(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()

	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))
	err := service.Register(ctx, validProduct("macbook-air"))

	require.ErrorIs(t, err, ErrProductAlreadyExists)
}

func TestService_Register_Validation(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr error
	}{
		{
			name:    "unknown category",
			mutate:  func(p *Product) { p.Category = "furniture" },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "negative price",
			mutate:  func(p *Product) { p.SellingPrice = decimal.RequireFromString("-1") },
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "future arrival date",
			mutate:  func(p *Product) { p.ArrivalDate = time.Now().Add(48 * time.Hour) },
			wantErr: ErrInvalidArrivalDate,
		},
		{
			name:    "negative quantity",
			mutate:  func(p *Product) { p.Quantity = -1 },
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct("macbook-air")
			tt.mutate(p)
			err := service.Register(ctx, p)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ============================================
// GetProduct Tests
// ============================================

func TestService_GetProduct_NotFound(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()

	_, err := service.GetProduct(ctx, "missing")

	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_GetProduct_ZeroStockStillVisible(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()

	p := validProduct("macbook-air")
	p.Quantity = 0
	require.NoError(t, service.Register(ctx, p))

	got, err := service.GetProduct(ctx, "macbook-air")

	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

// ============================================
// ChangeQuantity Tests
// ============================================

func TestService_ChangeQuantity(t *testing.T) {
	service, store := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))

	require.NoError(t, service.ChangeQuantity(ctx, "macbook-air", 6))
	assert.Equal(t, 10, store.products["macbook-air"].Quantity)

	require.NoError(t, service.ChangeQuantity(ctx, "macbook-air", -3))
	assert.Equal(t, 7, store.products["macbook-air"].Quantity)
}

func TestService_ChangeQuantity_ZeroDelta(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))

	err := service.ChangeQuantity(ctx, "macbook-air", 0)

	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestService_ChangeQuantity_NotFound(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()

	err := service.ChangeQuantity(ctx, "missing", 1)

	require.ErrorIs(t, err, ErrProductNotFound)
}

// ============================================
// Sell Tests
// ============================================

func TestService_Sell_Success(t *testing.T) {
	service, store := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))

	err := service.Sell(ctx, "macbook-air", 3)

	require.NoError(t, err)
	assert.Equal(t, 1, store.products["macbook-air"].Quantity)
}

func TestService_Sell_EmptyStock(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()

	p := validProduct("macbook-air")
	p.Quantity = 0
	require.NoError(t, service.Register(ctx, p))

	err := service.Sell(ctx, "macbook-air", 1)

	require.ErrorIs(t, err, ErrEmptyStock)
}

func TestService_Sell_LowStock(t *testing.T) {
	service, store := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))

	err := service.Sell(ctx, "macbook-air", 5)

	require.ErrorIs(t, err, ErrLowStock)
	assert.Equal(t, 4, store.products["macbook-air"].Quantity)
}

func TestService_Sell_InvalidQuantity(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))

	require.ErrorIs(t, service.Sell(ctx, "macbook-air", 0), ErrInvalidQuantity)
	require.ErrorIs(t, service.Sell(ctx, "macbook-air", -2), ErrInvalidQuantity)
}

// ============================================
// Delete Tests
// ============================================

func TestService_Delete(t *testing.T) {
	service, store := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, validProduct("macbook-air")))

	require.NoError(t, service.Delete(ctx, "macbook-air"))
	assert.NotContains(t, store.products, "macbook-air")

	require.ErrorIs(t, service.Delete(ctx, "macbook-air"), ErrProductNotFound)
}
