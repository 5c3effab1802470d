package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/ec-shop/internal/domain/catalog"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// PostgresProductStore implements catalog.ProductStore on PostgreSQL.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (ps *PostgresProductStore) GetProduct(ctx context.Context, model string) (*catalog.Product, error) {
	var p catalog.Product
	var details sql.NullString
	err := ps.db.QueryRowContext(ctx, `
		SELECT model, category, selling_price, arrival_date, details, quantity
		FROM products WHERE model = $1
	`, model).Scan(&p.Model, &p.Category, &p.SellingPrice, &p.ArrivalDate, &details, &p.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
		}
		return nil, err
	}
	p.Details = details.String
	return &p, nil
}

func (ps *PostgresProductStore) InsertProduct(ctx context.Context, p *catalog.Product) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO products (model, category, selling_price, arrival_date, details, quantity)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, p.Model, p.Category, p.SellingPrice, p.ArrivalDate, p.Details, p.Quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%s: %w", p.Model, catalog.ErrProductAlreadyExists)
		}
		return err
	}
	return nil
}

func (ps *PostgresProductStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT model, category, selling_price, arrival_date, details, quantity
		FROM products ORDER BY model
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		var details sql.NullString
		if err := rows.Scan(&p.Model, &p.Category, &p.SellingPrice, &p.ArrivalDate, &details, &p.Quantity); err != nil {
			return nil, err
		}
		p.Details = details.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// ChangeQuantity applies a signed stock adjustment. It does not enforce
// non-negativity itself; callers check availability first and the schema's
// check constraint is the last line of defense.
func (ps *PostgresProductStore) ChangeQuantity(ctx context.Context, model string, delta int) error {
	res, err := ps.db.ExecContext(ctx,
		`UPDATE products SET quantity = quantity + $2 WHERE model = $1`,
		model, delta)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
	}
	return nil
}

// DecrementStock removes qty units only when the live quantity covers them,
// in one conditional statement so the check and the decrement cannot race.
func (ps *PostgresProductStore) DecrementStock(ctx context.Context, model string, qty int) error {
	res, err := ps.db.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - $1 WHERE model = $2 AND quantity >= $1`,
		qty, model)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Nothing updated: distinguish missing product, empty stock and low stock.
	var live int
	err = ps.db.QueryRowContext(ctx, `SELECT quantity FROM products WHERE model = $1`, model).Scan(&live)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
		}
		return err
	}
	if live == 0 {
		return fmt.Errorf("%s: %w", model, catalog.ErrEmptyStock)
	}
	return fmt.Errorf("%s: have %d, want %d: %w", model, live, qty, catalog.ErrLowStock)
}

func (ps *PostgresProductStore) DeleteProduct(ctx context.Context, model string) error {
	res, err := ps.db.ExecContext(ctx, `DELETE FROM products WHERE model = $1`, model)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", model, catalog.ErrProductNotFound)
	}
	return nil
}
