package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ec-shop/internal/domain/catalog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartStore is the persistence surface for cart headers and line items.
// Implementations provide row-level atomicity per call; Checkout runs in a
// single transaction so the stock decrement and the paid flag commit together.
type CartStore interface {
	// GetCurrentCart returns the single unpaid cart for user with its line
	// items. When none exists it returns a transient, unsaved cart (zero ID,
	// no items) rather than an error.
	GetCurrentCart(ctx context.Context, user string) (*Cart, error)
	CreateCart(ctx context.Context, c *Cart) (int64, error)
	InsertLineItem(ctx context.Context, cartID int64, item LineItem) error
	// IncrementLineItemQuantity adjusts an existing line item by a signed
	// delta. Callers must delete the row instead of passing a delta that would
	// drive the quantity to zero or below.
	IncrementLineItemQuantity(ctx context.Context, cartID int64, model string, delta int) error
	DeleteLineItem(ctx context.Context, cartID int64, model string) error
	// UpdateTotal applies a signed delta to the cart header total.
	UpdateTotal(ctx context.Context, cartID int64, delta decimal.Decimal) error
	// Checkout atomically decrements catalog stock for every line item and
	// marks the cart paid with today's date. Any item whose live stock does
	// not cover its quantity aborts the whole transaction with
	// catalog.ErrEmptyStock or catalog.ErrLowStock.
	Checkout(ctx context.Context, c *Cart) error
	// ClearCart deletes all line items and zeroes the total, keeping the
	// unpaid cart header.
	ClearCart(ctx context.Context, cartID int64) error
	GetCustomerHistory(ctx context.Context, user string) ([]Cart, error)
	GetAllCarts(ctx context.Context) ([]Cart, error)
	DeleteAllCarts(ctx context.Context) error
}

// Catalog is the slice of the product catalog the cart service consumes.
type Catalog interface {
	GetProduct(ctx context.Context, model string) (*catalog.Product, error)
}

// EventPublisher publishes domain events; the Kafka producer satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service orchestrates cart mutations against the catalog and the cart store.
// Stock is never touched while shopping: add and remove only adjust the cart,
// and checkout performs the one atomic decrement per line item. Operations for
// the same user are serialized by a per-user mutex.
type Service struct {
	carts     CartStore
	catalog   Catalog
	publisher EventPublisher
	locks     *userLocks
	logger    zerolog.Logger
}

func NewService(carts CartStore, cat Catalog, publisher EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		carts:     carts,
		catalog:   cat,
		publisher: publisher,
		locks:     newUserLocks(),
		logger:    logger.With().Str("component", "cart").Logger(),
	}
}

// AddToCart puts one unit of model into the user's current cart, creating the
// cart lazily. The product must exist and its live stock must cover the cart's
// new quantity for that model; nothing is reserved or decremented here.
func (s *Service) AddToCart(ctx context.Context, user, model string) error {
	unlock := s.locks.lock(user)
	defer unlock()

	p, err := s.catalog.GetProduct(ctx, model)
	if err != nil {
		return err
	}
	if p.Quantity == 0 {
		return fmt.Errorf("%s: %w", model, catalog.ErrEmptyStock)
	}

	c, err := s.carts.GetCurrentCart(ctx, user)
	if err != nil {
		return err
	}

	line := c.FindItem(model)
	wanted := 1
	if line != nil {
		wanted = line.Quantity + 1
	}
	if wanted > p.Quantity {
		return fmt.Errorf("%s: have %d, want %d: %w", model, p.Quantity, wanted, catalog.ErrLowStock)
	}

	if !c.Persisted() {
		id, err := s.carts.CreateCart(ctx, c)
		if err != nil {
			return err
		}
		c.ID = id
	}

	if line != nil {
		if err := s.carts.IncrementLineItemQuantity(ctx, c.ID, model, 1); err != nil {
			return err
		}
	} else {
		item := LineItem{
			Model:    model,
			Quantity: 1,
			Category: p.Category,
			Price:    p.SellingPrice,
		}
		if err := s.carts.InsertLineItem(ctx, c.ID, item); err != nil {
			return err
		}
	}

	return s.carts.UpdateTotal(ctx, c.ID, p.SellingPrice)
}

// GetCart returns the user's current cart, or the empty transient shape when
// none exists.
func (s *Service) GetCart(ctx context.Context, user string) (*Cart, error) {
	return s.carts.GetCurrentCart(ctx, user)
}

// CheckoutCart finalizes the current cart: re-validates live stock for every
// line item, then commits the paid flag and the per-item stock decrements in
// one transaction. A CartCheckedOut event is published best-effort afterwards.
func (s *Service) CheckoutCart(ctx context.Context, user string) error {
	unlock := s.locks.lock(user)
	defer unlock()

	c, err := s.carts.GetCurrentCart(ctx, user)
	if err != nil {
		return err
	}
	if !c.Persisted() {
		return ErrCartNotFound
	}
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}

	for _, item := range c.Items {
		p, err := s.catalog.GetProduct(ctx, item.Model)
		if err != nil {
			return err
		}
		if p.Quantity == 0 {
			return fmt.Errorf("%s: %w", item.Model, catalog.ErrEmptyStock)
		}
		if p.Quantity < item.Quantity {
			return fmt.Errorf("%s: have %d, want %d: %w", item.Model, p.Quantity, item.Quantity, catalog.ErrLowStock)
		}
	}

	// The store re-checks each decrement conditionally; a concurrent sale
	// between the validation above and this commit still rolls back cleanly.
	if err := s.carts.Checkout(ctx, c); err != nil {
		return err
	}

	s.publishCheckedOut(ctx, c)
	return nil
}

func (s *Service) publishCheckedOut(ctx context.Context, c *Cart) {
	if s.publisher == nil {
		return
	}

	event := CartCheckedOut{
		EventType: EventCartCheckedOut,
		CartID:    c.ID,
		Customer:  c.Customer,
		Total:     c.Total,
		PaidAt:    time.Now(),
	}
	for _, item := range c.Items {
		event.Items = append(event.Items, CheckedOutItem{
			Model:    item.Model,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	// The sale is already committed; a publish failure only delays the
	// confirmation email.
	if err := s.publisher.Publish(ctx, c.Customer, event); err != nil {
		s.logger.Error().Err(err).Str("customer", c.Customer).Msg("failed to publish checkout event")
	}
}

// CheckAvailability reports whether live catalog stock covers every line item
// of c. It is read-only and short-circuits on the first uncovered item.
// Catalog lookup errors (e.g. a product deleted after being added) propagate.
func (s *Service) CheckAvailability(ctx context.Context, c *Cart) (bool, error) {
	for _, item := range c.Items {
		p, err := s.catalog.GetProduct(ctx, item.Model)
		if err != nil {
			return false, err
		}
		if item.Quantity > p.Quantity {
			return false, nil
		}
	}
	return true, nil
}

// RemoveProduct takes one unit of model out of the user's current cart,
// deleting the line item when its quantity reaches zero. Catalog stock is not
// restocked: nothing was decremented at add time, so there is nothing to give
// back.
func (s *Service) RemoveProduct(ctx context.Context, user, model string) error {
	unlock := s.locks.lock(user)
	defer unlock()

	if _, err := s.catalog.GetProduct(ctx, model); err != nil {
		return err
	}

	c, err := s.carts.GetCurrentCart(ctx, user)
	if err != nil {
		return err
	}
	if !c.Persisted() {
		return ErrCartNotFound
	}
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}

	line := c.FindItem(model)
	if line == nil {
		return fmt.Errorf("%s: %w", model, ErrProductNotInCart)
	}

	if line.Quantity == 1 {
		if err := s.carts.DeleteLineItem(ctx, c.ID, model); err != nil {
			return err
		}
	} else {
		if err := s.carts.IncrementLineItemQuantity(ctx, c.ID, model, -1); err != nil {
			return err
		}
	}

	return s.carts.UpdateTotal(ctx, c.ID, line.Price.Neg())
}

// Clear empties the user's current cart, keeping the unpaid header.
func (s *Service) Clear(ctx context.Context, user string) error {
	unlock := s.locks.lock(user)
	defer unlock()

	c, err := s.carts.GetCurrentCart(ctx, user)
	if err != nil {
		return err
	}
	if !c.Persisted() {
		return ErrCartNotFound
	}
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}

	return s.carts.ClearCart(ctx, c.ID)
}

// History returns the user's paid carts, excluding the current one.
func (s *Service) History(ctx context.Context, user string) ([]Cart, error) {
	return s.carts.GetCustomerHistory(ctx, user)
}

// GetAllCarts returns every cart, paid and unpaid, for all customers.
func (s *Service) GetAllCarts(ctx context.Context) ([]Cart, error) {
	return s.carts.GetAllCarts(ctx)
}

// DeleteAllCarts removes every cart and line item.
func (s *Service) DeleteAllCarts(ctx context.Context) error {
	return s.carts.DeleteAllCarts(ctx)
}
