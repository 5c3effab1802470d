package catalog

import (
	"context"
	"time"
)

// ProductStore is the persistence surface the catalog service needs. The
// Postgres implementation lives in internal/infrastructure/store.
type ProductStore interface {
	GetProduct(ctx context.Context, model string) (*Product, error)
	InsertProduct(ctx context.Context, p *Product) error
	ListProducts(ctx context.Context) ([]Product, error)
	ChangeQuantity(ctx context.Context, model string, delta int) error
	// DecrementStock applies a conditional decrement: it only succeeds when the
	// live quantity covers qty, otherwise it returns ErrEmptyStock or
	// ErrLowStock without touching the row.
	DecrementStock(ctx context.Context, model string, qty int) error
	DeleteProduct(ctx context.Context, model string) error
}

type Service struct {
	store ProductStore
}

func NewService(store ProductStore) *Service {
	return &Service{store: store}
}

// GetProduct returns the current state of one product regardless of stock.
func (s *Service) GetProduct(ctx context.Context, model string) (*Product, error) {
	return s.store.GetProduct(ctx, model)
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.store.ListProducts(ctx)
}

// Register adds a new product to the catalog. Fails with
// ErrProductAlreadyExists when the model is taken.
func (s *Service) Register(ctx context.Context, p *Product) error {
	if !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if p.SellingPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if p.ArrivalDate.After(time.Now()) {
		return ErrInvalidArrivalDate
	}
	if p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return s.store.InsertProduct(ctx, p)
}

// ChangeQuantity applies a signed stock adjustment. Positive deltas restock;
// callers of negative deltas must have verified availability first.
func (s *Service) ChangeQuantity(ctx context.Context, model string, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	return s.store.ChangeQuantity(ctx, model, delta)
}

// Sell records an administrative sale of qty units, distinguishing a product
// with no stock at all (ErrEmptyStock) from one with some but not enough
// (ErrLowStock).
func (s *Service) Sell(ctx context.Context, model string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return s.store.DecrementStock(ctx, model, qty)
}

// Delete removes a product. Line items referencing it in open carts are
// cleaned up by the schema's cascade.
func (s *Service) Delete(ctx context.Context, model string) error {
	return s.store.DeleteProduct(ctx, model)
}
