package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// Create inserts the order and all of its items in one transaction; either
// the whole order materializes or nothing does.
func (r *repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
INSERT INTO orders (customer_id, status, shipping_address, total, currency, payment_method, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`,
		o.CustomerID, o.Status, o.ShippingAddress, o.Total, o.Currency, o.PaymentMethod, o.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
RETURNING id`,
			it.OrderID, it.ProductID, it.Quantity, it.Price,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const orderColumns = `id, customer_id, status, shipping_address, total, currency, payment_method, payment_status, created_at`

func (r *repo) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID,
	).Scan(&o.ID, &o.CustomerID, &o.Status, &o.ShippingAddress, &o.Total, &o.Currency,
		&o.PaymentMethod, &o.PaymentStatus, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	var c customer.Customer
	err = r.db.QueryRowContext(ctx, `
SELECT id, email, name, address, city, state, zip_code, phone, created_at
FROM customers WHERE id = $1`, o.CustomerID,
	).Scan(&c.ID, &c.Email, &c.Name, &c.Address, &c.City, &c.State, &c.ZipCode, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("select order customer: %w", err)
	}
	o.Customer = &c

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repo) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.ShippingAddress, &o.Total,
			&o.Currency, &o.PaymentMethod, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// loadItems fetches the items joined with a product display snapshot. The
// price column on the item is the frozen purchase price; the joined product
// carries the live one.
func (r *repo) loadItems(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
       p.id, p.name, p.description, p.price, p.compare_at_price, p.image_url, p.stock, p.category_id, p.featured, p.slug, p.created_at
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		p := new(catalog.Product)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.CompareAtPrice, &p.ImageURL,
			&p.Stock, &p.CategoryID, &p.Featured, &p.Slug, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		it.Product = p
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return items, nil
}
