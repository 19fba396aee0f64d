// Package testutil spins up throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/db"
)

// StartPostgres runs a disposable Postgres container, applies the schema and
// returns a connected pool. The container and pool are torn down via
// t.Cleanup.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(dsn, log.New(io.Discard, "", 0)))

	pool, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping())
	t.Cleanup(func() { pool.Close() })

	return pool
}

// SeedProduct inserts a product row and returns its id.
func SeedProduct(t *testing.T, pool *sql.DB, name, slug, price string, stock int) int64 {
	t.Helper()

	var categoryID int64
	err := pool.QueryRow(`
INSERT INTO categories (name, slug)
VALUES ('Drones', 'drones')
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id`).Scan(&categoryID)
	require.NoError(t, err)

	var id int64
	err = pool.QueryRow(`
INSERT INTO products (name, description, price, image_url, stock, category_id, featured, slug)
VALUES ($1, $2, $3, $4, $5, $6, false, $7)
RETURNING id`,
		name, name+" description", price, "/img/"+slug+".jpg", stock, categoryID, slug,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
