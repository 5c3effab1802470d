package cart

import (
	"errors"
	"time"

	"github.com/example/ec-shop/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound     = errors.New("no current cart for user")
	ErrEmptyCart        = errors.New("cart has no items")
	ErrProductNotInCart = errors.New("product is not in the cart")
)

// LineItem is one row of a cart: a product model with a quantity and the
// selling price snapshotted when the item was first added. The snapshot keeps
// historical totals stable if the catalog price later changes.
type LineItem struct {
	Model    string           `json:"model"`
	Quantity int              `json:"quantity"`
	Category catalog.Category `json:"category"`
	Price    decimal.Decimal  `json:"price"`
}

// Subtotal returns quantity x snapshotted price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is a customer's cart. ID is the database key and is zero until the
// cart is first persisted; it is never serialized to clients. At most one
// unpaid cart exists per customer at any time.
type Cart struct {
	ID          int64           `json:"-"`
	Customer    string          `json:"customer"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	Total       decimal.Decimal `json:"total"`
	Items       []LineItem      `json:"products"`
}

// Today returns the current UTC date with no clock component. Payment dates
// live in DATE columns and serialize without a time of day.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// NewTransient returns the unsaved empty cart shape handed out when a user has
// no current cart. Callers distinguish it from a persisted cart via Persisted.
func NewTransient(customer string) *Cart {
	return &Cart{
		Customer: customer,
		Total:    decimal.Zero,
		Items:    []LineItem{},
	}
}

// Persisted reports whether the cart has been written to the store.
func (c *Cart) Persisted() bool {
	return c.ID != 0
}

// FindItem returns the line item for model, or nil.
func (c *Cart) FindItem(model string) *LineItem {
	for i := range c.Items {
		if c.Items[i].Model == model {
			return &c.Items[i]
		}
	}
	return nil
}

// DerivedTotal recomputes the total from the line items.
func (c *Cart) DerivedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}
