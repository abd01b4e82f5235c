package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist yet. Safe to run on every
// startup; also used by the integration tests to provision a scratch db.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(12,2) NOT NULL CHECK (price > 0),
			stock       INTEGER NOT NULL CHECK (stock >= 0),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name ON products (name)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id         TEXT PRIMARY KEY,
			customer   TEXT NOT NULL,
			total      NUMERIC(14,2) NOT NULL,
			placed_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_placed_customer ON orders (placed_at, customer)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id           TEXT PRIMARY KEY,
			order_id     TEXT NOT NULL REFERENCES orders(id),
			product_id   TEXT NOT NULL REFERENCES products(id),
			product_name TEXT NOT NULL,
			quantity     INTEGER NOT NULL CHECK (quantity > 0),
			unit_price   NUMERIC(12,2) NOT NULL,
			line_total   NUMERIC(14,2) NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_product ON order_items (order_id, product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items (product_id)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
