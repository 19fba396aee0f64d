package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// foreignKeyViolation is the Postgres error code raised when a cart line
// references a product id that does not exist.
const foreignKeyViolation = "23503"

type Repository interface {
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) ([]Line, error)
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) (*Line, error)
	RemoveItem(ctx context.Context, lineID int64) ([]Line, error)
	GetCart(ctx context.Context, sessionID string) ([]Line, error)
	ClearCart(ctx context.Context, sessionID string) error
	DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// AddItem increments the line for (session, product) or creates it. The
// update-or-insert is a single statement so concurrent adds for the same pair
// serialize at the storage layer and no increment is lost.
func (r *repo) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) ([]Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO cart_items (session_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()`,
		sessionID, productID, quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("upsert cart line: %w", err)
	}

	return r.GetCart(ctx, sessionID)
}

// UpdateQuantity overwrites the quantity; it never adds, and zero or negative
// is a validation error rather than an implicit remove.
func (r *repo) UpdateQuantity(ctx context.Context, lineID int64, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2`, quantity, lineID)
	if err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrLineNotFound
	}

	return r.getLine(ctx, lineID)
}

func (r *repo) RemoveItem(ctx context.Context, lineID int64) ([]Line, error) {
	var sessionID string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 RETURNING session_id`, lineID).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("delete cart line: %w", err)
	}

	return r.GetCart(ctx, sessionID)
}

const lineColumns = `
ci.id, ci.session_id, ci.product_id, ci.quantity, ci.created_at,
p.id, p.name, p.description, p.price, p.compare_at_price, p.image_url, p.stock, p.category_id, p.featured, p.slug, p.created_at`

func (r *repo) GetCart(ctx context.Context, sessionID string) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+lineColumns+`
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.session_id = $1
ORDER BY ci.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := scanLine(rows, &l); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return lines, nil
}

// ClearCart removes every line for the session. Clearing an already-empty
// session is a no-op.
func (r *repo) ClearCart(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// DeleteStale drops lines whose last mutation is older than the TTL and
// reports how many were removed. Every add and quantity change refreshes
// updated_at, so an actively-used cart is never swept.
func (r *repo) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale cart lines: %w", err)
	}
	return res.RowsAffected()
}

func (r *repo) getLine(ctx context.Context, lineID int64) (*Line, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+lineColumns+`
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.id = $1`, lineID)

	var l Line
	if err := scanLine(row, &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("scan cart line: %w", err)
	}
	return &l, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLine(row rowScanner, l *Line) error {
	return row.Scan(
		&l.ID, &l.SessionID, &l.ProductID, &l.Quantity, &l.CreatedAt,
		&l.Product.ID, &l.Product.Name, &l.Product.Description, &l.Product.Price,
		&l.Product.CompareAtPrice, &l.Product.ImageURL, &l.Product.Stock,
		&l.Product.CategoryID, &l.Product.Featured, &l.Product.Slug, &l.Product.CreatedAt,
	)
}
