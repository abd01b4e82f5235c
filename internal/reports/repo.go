// Package reports holds the read-only queries over the product and order
// ledgers: the low-stock listing and the aggregate statistics.
package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/lucasvieira/go-stock-orders/internal/catalog"
	"github.com/lucasvieira/go-stock-orders/internal/fault"
	"github.com/lucasvieira/go-stock-orders/internal/redisx"
)

type Repo struct {
	DB    *pgxpool.Pool
	Redis *redis.Client

	// LowStockThreshold feeds the statistics' low-stock product count.
	LowStockThreshold int
}

type Statistics struct {
	TotalProducts     int             `json:"total_products"`
	TotalOrders       int             `json:"total_orders"`
	TotalStockUnits   int64           `json:"total_stock_units"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	LowStockProducts  int             `json:"low_stock_products"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// LowStock lists products with stock strictly below threshold, poorest
// first, ties broken by id.
func (r *Repo) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	if threshold < 0 {
		return nil, fault.Validationf("threshold must not be negative")
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM products WHERE stock < $1
		ORDER BY stock ASC, id ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock query: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Statistics aggregates ledger-wide counts. Cache-aside over Redis: every
// mutation calls InvalidateStats, so an uncached read is always fresh.
func (r *Repo) Statistics(ctx context.Context) (*Statistics, error) {
	if r.Redis != nil {
		if raw, err := r.Redis.Get(ctx, redisx.KeyStats).Result(); err == nil && raw != "" {
			var s Statistics
			if err := json.Unmarshal([]byte(raw), &s); err == nil {
				return &s, nil
			}
		}
	}

	var s Statistics
	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COALESCE(SUM(stock), 0) FROM products),
			(SELECT COUNT(*) FROM products WHERE stock < $1),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total), 0) FROM orders)`,
		r.LowStockThreshold,
	).Scan(&s.TotalProducts, &s.TotalStockUnits, &s.LowStockProducts, &s.TotalOrders, &s.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("statistics query: %w", err)
	}
	s.LowStockThreshold = r.LowStockThreshold
	s.AverageOrderValue = decimal.Zero
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue.DivRound(decimal.NewFromInt(int64(s.TotalOrders)), 2)
	}

	if r.Redis != nil {
		_ = r.Redis.Set(ctx, redisx.KeyStats, string(mustJSON(&s)), redisx.TTLStatsCache).Err()
	}
	return &s, nil
}

// InvalidateStats drops the cached statistics after a mutation.
func (r *Repo) InvalidateStats(ctx context.Context) {
	if r.Redis != nil {
		_ = r.Redis.Del(ctx, redisx.KeyStats).Err()
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
