package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/catalog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PostgresCartStore implements cart.CartStore on PostgreSQL. Individual calls
// are single statements; Checkout is the one multi-statement transaction.
type PostgresCartStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresCartStore(db *sql.DB, logger zerolog.Logger) *PostgresCartStore {
	return &PostgresCartStore{
		db:     db,
		logger: logger.With().Str("component", "cart_store").Logger(),
	}
}

// GetCurrentCart returns the single unpaid cart for user with its line items,
// or a transient unsaved cart when none exists. The header total is
// reconciled against the line items on every read: additive delta writes can
// drift, and the derived sum is authoritative.
func (cs *PostgresCartStore) GetCurrentCart(ctx context.Context, user string) (*cart.Cart, error) {
	c := cart.NewTransient(user)
	var paymentDate sql.NullTime
	err := cs.db.QueryRowContext(ctx, `
		SELECT id, customer, paid, payment_date, total
		FROM carts WHERE customer = $1 AND NOT paid
		ORDER BY id DESC LIMIT 1
	`, user).Scan(&c.ID, &c.Customer, &c.Paid, &paymentDate, &c.Total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, nil
		}
		return nil, err
	}

	items, err := cs.loadItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items

	if derived := c.DerivedTotal(); !derived.Equal(c.Total) {
		cs.logger.Warn().
			Int64("cart_id", c.ID).
			Str("stored", c.Total.String()).
			Str("derived", derived.String()).
			Msg("cart total drifted from line items, correcting")
		if _, err := cs.db.ExecContext(ctx,
			`UPDATE carts SET total = $2 WHERE id = $1`, c.ID, derived); err != nil {
			return nil, err
		}
		c.Total = derived
	}

	return c, nil
}

func (cs *PostgresCartStore) loadItems(ctx context.Context, cartID int64) ([]cart.LineItem, error) {
	rows, err := cs.db.QueryContext(ctx, `
		SELECT model, quantity, category, price
		FROM cart_items WHERE cart_id = $1 ORDER BY model
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []cart.LineItem{}
	for rows.Next() {
		var li cart.LineItem
		if err := rows.Scan(&li.Model, &li.Quantity, &li.Category, &li.Price); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (cs *PostgresCartStore) CreateCart(ctx context.Context, c *cart.Cart) (int64, error) {
	var id int64
	err := cs.db.QueryRowContext(ctx, `
		INSERT INTO carts (customer, paid, total) VALUES ($1, FALSE, 0)
		RETURNING id
	`, c.Customer).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (cs *PostgresCartStore) InsertLineItem(ctx context.Context, cartID int64, item cart.LineItem) error {
	_, err := cs.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, model, quantity, category, price)
		VALUES ($1, $2, $3, $4, $5)
	`, cartID, item.Model, item.Quantity, item.Category, item.Price)
	return err
}

func (cs *PostgresCartStore) IncrementLineItemQuantity(ctx context.Context, cartID int64, model string, delta int) error {
	res, err := cs.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = quantity + $3
		WHERE cart_id = $1 AND model = $2
	`, cartID, model, delta)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", model, cart.ErrProductNotInCart)
	}
	return nil
}

func (cs *PostgresCartStore) DeleteLineItem(ctx context.Context, cartID int64, model string) error {
	res, err := cs.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND model = $2`, cartID, model)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", model, cart.ErrProductNotInCart)
	}
	return nil
}

func (cs *PostgresCartStore) UpdateTotal(ctx context.Context, cartID int64, delta decimal.Decimal) error {
	_, err := cs.db.ExecContext(ctx,
		`UPDATE carts SET total = total + $2 WHERE id = $1`, cartID, delta)
	return err
}

// Checkout marks the cart paid with today's date and decrements catalog stock
// for every line item, all inside one transaction. Each decrement is
// conditional on the live quantity covering the line item; the first item that
// fails aborts the whole checkout, leaving stock and the cart untouched.
func (cs *PostgresCartStore) Checkout(ctx context.Context, c *cart.Cart) error {
	tx, err := cs.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range c.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET quantity = quantity - $1
			WHERE model = $2 AND quantity >= $1
		`, item.Quantity, item.Model)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return cs.checkoutStockError(ctx, tx, item.Model, item.Quantity)
		}
	}

	paidAt := cart.Today()
	res, err := tx.ExecContext(ctx, `
		UPDATE carts SET paid = TRUE, payment_date = $2
		WHERE id = $1 AND NOT paid
	`, c.ID, paidAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return cart.ErrCartNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.Paid = true
	c.PaymentDate = &paidAt
	return nil
}

func (cs *PostgresCartStore) checkoutStockError(ctx context.Context, tx *sql.Tx, model string, wanted int) error {
	var live int
	err := tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE model = $1`, model).Scan(&live)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
		}
		return err
	}
	if live == 0 {
		return fmt.Errorf("%s: %w", model, catalog.ErrEmptyStock)
	}
	return fmt.Errorf("%s: have %d, want %d: %w", model, live, wanted, catalog.ErrLowStock)
}

// ClearCart removes every line item and zeroes the total, keeping the header.
func (cs *PostgresCartStore) ClearCart(ctx context.Context, cartID int64) error {
	tx, err := cs.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE carts SET total = 0 WHERE id = $1`, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetCustomerHistory returns the user's paid carts, most recent first.
func (cs *PostgresCartStore) GetCustomerHistory(ctx context.Context, user string) ([]cart.Cart, error) {
	return cs.queryCarts(ctx,
		`SELECT id, customer, paid, payment_date, total
		 FROM carts WHERE customer = $1 AND paid
		 ORDER BY payment_date DESC, id DESC`, user)
}

// GetAllCarts returns every cart, paid and unpaid, for all customers.
func (cs *PostgresCartStore) GetAllCarts(ctx context.Context) ([]cart.Cart, error) {
	return cs.queryCarts(ctx,
		`SELECT id, customer, paid, payment_date, total
		 FROM carts ORDER BY id`)
}

func (cs *PostgresCartStore) queryCarts(ctx context.Context, query string, args ...any) ([]cart.Cart, error) {
	rows, err := cs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	carts := []cart.Cart{}
	for rows.Next() {
		var c cart.Cart
		var paymentDate sql.NullTime
		if err := rows.Scan(&c.ID, &c.Customer, &c.Paid, &paymentDate, &c.Total); err != nil {
			return nil, err
		}
		if paymentDate.Valid {
			t := paymentDate.Time
			c.PaymentDate = &t
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range carts {
		items, err := cs.loadItems(ctx, carts[i].ID)
		if err != nil {
			return nil, err
		}
		carts[i].Items = items
	}
	return carts, nil
}

// DeleteAllCarts removes every cart; line items go with them via the cascade.
func (cs *PostgresCartStore) DeleteAllCarts(ctx context.Context) error {
	_, err := cs.db.ExecContext(ctx, `DELETE FROM carts`)
	return err
}
