package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	UpsertByEmail(ctx context.Context, c *Customer) error
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// UpsertByEmail creates the customer on first checkout and overwrites the
// profile fields on every later one. ID and CreatedAt are filled in from the
// stored row.
func (r *repo) UpsertByEmail(ctx context.Context, c *Customer) error {
	const q = `
INSERT INTO customers (email, name, address, city, state, zip_code, phone)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    address = EXCLUDED.address,
    city = EXCLUDED.city,
    state = EXCLUDED.state,
    zip_code = EXCLUDED.zip_code,
    phone = EXCLUDED.phone
RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, q,
		c.Email, c.Name, c.Address, c.City, c.State, c.ZipCode, c.Phone,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	var c Customer
	err := r.db.QueryRowContext(ctx, `
SELECT id, email, name, address, city, state, zip_code, phone, created_at
FROM customers WHERE email = $1`, email,
	).Scan(&c.ID, &c.Email, &c.Name, &c.Address, &c.City, &c.State, &c.ZipCode, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return &c, nil
}
