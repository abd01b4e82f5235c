package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
	"github.com/lucasvieira/go-stock-orders/internal/postgres"
)

// Repo is the stock reversal engine: every order transition runs as one
// transaction that applies (or reverses) stock deltas together with the
// order records, so either everything commits or nothing does.
type Repo struct{ DB *pgxpool.Pool }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const orderCols = `id, customer, total, placed_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Customer, &o.Total, &o.PlacedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder validates the requested items, decrements stock and persists
// the order with its snapshot items, all inside one transaction.
func (r *Repo) CreateOrder(ctx context.Context, customer string, items []ItemInput) (*Order, error) {
	customer, err := validCustomer(customer)
	if err != nil {
		return nil, err
	}
	if err := validItems(items); err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := productIDs(items)
	if err := lockProducts(ctx, tx, ids); err != nil {
		return nil, err
	}
	vitems, total, err := validateAgainstLedger(ctx, tx, items)
	if err != nil {
		return nil, err
	}
	if err := applyStockDelta(ctx, tx, vitems, -1); err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	row := tx.QueryRow(ctx, `
		INSERT INTO orders(id, customer, total)
		VALUES ($1, $2, $3)
		RETURNING `+orderCols, orderID, customer, total)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	o.Items, err = insertItems(ctx, tx, orderID, vitems)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if postgres.IsContention(err) {
			return nil, fault.Conflictf("concurrent order commit, retry")
		}
		return nil, err
	}
	return o, nil
}

// UpdateOrder replaces the order's item set via reverse-then-reapply: the
// old items' stock effect is undone first, then the new list is validated
// against the reversed stock and applied as in CreateOrder. A validation
// failure rolls the whole transaction back, reversal included. A nil item
// list updates the customer only and leaves stock untouched.
func (r *Repo) UpdateOrder(ctx context.Context, id string, customer *string, items []ItemInput) (*Order, error) {
	newCustomer := ""
	if customer != nil {
		c, err := validCustomer(*customer)
		if err != nil {
			return nil, err
		}
		newCustomer = c
	}
	if items != nil {
		if err := validItems(items); err != nil {
			return nil, err
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &fault.NotFound{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	if items != nil {
		existing, err := loadItems(ctx, tx, []string{id})
		if err != nil {
			return nil, err
		}
		old := existing[id]

		// lock the union of old and new product rows up front so the
		// reversal and the re-validation see a stable ledger
		union := productIDs(items)
		for _, it := range old {
			union = append(union, it.ProductID)
		}
		if err := lockProducts(ctx, tx, union); err != nil {
			return nil, err
		}

		for _, it := range old {
			if err := addStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return nil, err
			}
		}

		vitems, total, err := validateAgainstLedger(ctx, tx, items)
		if err != nil {
			// rollback undoes the reversal together with everything else
			return nil, err
		}
		if err := applyStockDelta(ctx, tx, vitems, -1); err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
			return nil, fmt.Errorf("delete old items: %w", err)
		}
		o.Items, err = insertItems(ctx, tx, id, vitems)
		if err != nil {
			return nil, err
		}
		o.Total = total
	} else {
		existing, err := loadItems(ctx, tx, []string{id})
		if err != nil {
			return nil, err
		}
		o.Items = existing[id]
	}

	if newCustomer != "" {
		o.Customer = newCustomer
	}
	row = tx.QueryRow(ctx, `
		UPDATE orders SET customer=$2, total=$3, updated_at=now()
		WHERE id=$1
		RETURNING `+orderCols, id, o.Customer, o.Total)
	updated, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	updated.Items = o.Items

	if err := tx.Commit(ctx); err != nil {
		if postgres.IsContention(err) {
			return nil, fault.Conflictf("concurrent order commit, retry")
		}
		return nil, err
	}
	return updated, nil
}

// DeleteOrder reverses the order's stock effect and removes the order and
// its items.
func (r *Repo) DeleteOrder(ctx context.Context, id string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &fault.NotFound{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	existing, err := loadItems(ctx, tx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = existing[id]

	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	if err := lockProducts(ctx, tx, ids); err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if err := addStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return nil, fmt.Errorf("delete items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id); err != nil {
		return nil, fmt.Errorf("delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if postgres.IsContention(err) {
			return nil, fault.Conflictf("concurrent order commit, retry")
		}
		return nil, err
	}
	return o, nil
}

func (r *Repo) GetOrder(ctx context.Context, id string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &fault.NotFound{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := loadItems(ctx, r.DB, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

func (r *Repo) ListOrders(ctx context.Context, offset, limit int) ([]Order, error) {
	if offset < 0 {
		return nil, fault.Validationf("offset must not be negative")
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+`
		FROM orders ORDER BY placed_at, id OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]Order, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := loadItems(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func productIDs(items []ItemInput) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func applyStockDelta(ctx context.Context, tx pgx.Tx, items []validatedItem, sign int) error {
	for _, it := range items {
		if err := addStock(ctx, tx, it.ProductID, sign*it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func addStock(ctx context.Context, tx pgx.Tx, productID string, delta int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at=now() WHERE id=$1`, productID, delta)
	if err != nil {
		return fmt.Errorf("adjust stock for %s: %w", productID, err)
	}
	if ct.RowsAffected() != 1 {
		return &fault.NotFound{Entity: "product", ID: productID}
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []validatedItem) ([]Item, error) {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		itemID := uuid.NewString()
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			itemID, orderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
		out = append(out, Item{
			ID:          itemID,
			OrderID:     orderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return out, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []string) (map[string][]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, line_total
		FROM order_items WHERE order_id = ANY($1) ORDER BY created_at, id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Item, len(orderIDs))
	for rows.Next() {
		var it Item
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal)
		if err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}
