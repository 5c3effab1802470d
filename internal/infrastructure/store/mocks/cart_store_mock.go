package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// MockCartStore is an in-memory implementation of cart.CartStore for testing.
// When Products is set, Checkout decrements its stock all-or-nothing, the way
// the Postgres store does inside its transaction.
type MockCartStore struct {
	mu     sync.Mutex
	carts  map[int64]*cart.Cart
	nextID int64

	Products *MockProductStore

	CreateCartCalls     int
	InsertLineItemCalls []InsertLineItemCall
	UpdateTotalCalls    []UpdateTotalCall
	CheckoutCalls       []int64
}

// InsertLineItemCall records parameters passed to InsertLineItem.
type InsertLineItemCall struct {
	CartID int64
	Item   cart.LineItem
}

// UpdateTotalCall records parameters passed to UpdateTotal.
type UpdateTotalCall struct {
	CartID int64
	Delta  decimal.Decimal
}

func NewMockCartStore() *MockCartStore {
	return &MockCartStore{
		carts:  make(map[int64]*cart.Cart),
		nextID: 1,
	}
}

func copyCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Items = make([]cart.LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	if c.PaymentDate != nil {
		t := *c.PaymentDate
		cp.PaymentDate = &t
	}
	return &cp
}

func (m *MockCartStore) GetCurrentCart(ctx context.Context, user string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current *cart.Cart
	for _, c := range m.carts {
		if c.Customer == user && !c.Paid {
			if current == nil || c.ID > current.ID {
				current = c
			}
		}
	}
	if current == nil {
		return cart.NewTransient(user), nil
	}
	return copyCart(current), nil
}

func (m *MockCartStore) CreateCart(ctx context.Context, c *cart.Cart) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCartCalls++
	id := m.nextID
	m.nextID++
	m.carts[id] = &cart.Cart{
		ID:       id,
		Customer: c.Customer,
		Total:    decimal.Zero,
		Items:    []cart.LineItem{},
	}
	return id, nil
}

func (m *MockCartStore) InsertLineItem(ctx context.Context, cartID int64, item cart.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertLineItemCalls = append(m.InsertLineItemCalls, InsertLineItemCall{CartID: cartID, Item: item})

	c, ok := m.carts[cartID]
	if !ok {
		return cart.ErrCartNotFound
	}
	c.Items = append(c.Items, item)
	sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].Model < c.Items[j].Model })
	return nil
}

func (m *MockCartStore) IncrementLineItemQuantity(ctx context.Context, cartID int64, model string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return cart.ErrCartNotFound
	}
	for i := range c.Items {
		if c.Items[i].Model == model {
			c.Items[i].Quantity += delta
			return nil
		}
	}
	return fmt.Errorf("%s: %w", model, cart.ErrProductNotInCart)
}

func (m *MockCartStore) DeleteLineItem(ctx context.Context, cartID int64, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return cart.ErrCartNotFound
	}
	for i := range c.Items {
		if c.Items[i].Model == model {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", model, cart.ErrProductNotInCart)
}

func (m *MockCartStore) UpdateTotal(ctx context.Context, cartID int64, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateTotalCalls = append(m.UpdateTotalCalls, UpdateTotalCall{CartID: cartID, Delta: delta})

	c, ok := m.carts[cartID]
	if !ok {
		return cart.ErrCartNotFound
	}
	c.Total = c.Total.Add(delta)
	return nil
}

func (m *MockCartStore) Checkout(ctx context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CheckoutCalls = append(m.CheckoutCalls, c.ID)

	stored, ok := m.carts[c.ID]
	if !ok || stored.Paid {
		return cart.ErrCartNotFound
	}

	if m.Products != nil {
		wanted := make(map[string]int, len(stored.Items))
		for _, item := range stored.Items {
			wanted[item.Model] = item.Quantity
		}
		if err := m.Products.DecrementAll(wanted); err != nil {
			return err
		}
	}

	paidAt := cart.Today()
	stored.Paid = true
	stored.PaymentDate = &paidAt
	c.Paid = true
	c.PaymentDate = &paidAt
	return nil
}

func (m *MockCartStore) ClearCart(ctx context.Context, cartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return cart.ErrCartNotFound
	}
	c.Items = []cart.LineItem{}
	c.Total = decimal.Zero
	return nil
}

func (m *MockCartStore) GetCustomerHistory(ctx context.Context, user string) ([]cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := []cart.Cart{}
	for _, c := range m.carts {
		if c.Customer == user && c.Paid {
			history = append(history, *copyCart(c))
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].ID > history[j].ID })
	return history, nil
}

func (m *MockCartStore) GetAllCarts(ctx context.Context) ([]cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := []cart.Cart{}
	for _, c := range m.carts {
		all = append(all, *copyCart(c))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *MockCartStore) DeleteAllCarts(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts = make(map[int64]*cart.Cart)
	return nil
}
