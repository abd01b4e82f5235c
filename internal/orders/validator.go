package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
)

const maxCustomerLen = 100

// validCustomer trims and checks the customer name.
func validCustomer(customer string) (string, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return "", fault.Validationf("customer name must not be empty")
	}
	if len(customer) > maxCustomerLen {
		return "", fault.Validationf("customer name must be at most %d characters", maxCustomerLen)
	}
	return customer, nil
}

// validItems runs the structural pass: non-empty list, positive quantities,
// no product repeated. Pure, no store access.
func validItems(items []ItemInput) error {
	if len(items) == 0 {
		return fault.Validationf("order must contain at least one item")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return fault.Validationf("item product id must not be empty")
		}
		if it.Quantity <= 0 {
			return fault.Validationf("quantity for product %s must be greater than zero", it.ProductID)
		}
		if seen[it.ProductID] {
			return fault.Validationf("duplicate product in order: %s", it.ProductID)
		}
		seen[it.ProductID] = true
	}
	return nil
}

type validatedItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// lockProducts takes FOR UPDATE locks on the given product rows. Ids are
// locked in ascending order so two concurrent commits touching the same
// products cannot deadlock each other.
func lockProducts(ctx context.Context, tx pgx.Tx, ids []string) error {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	rows, err := tx.Query(ctx,
		`SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

// validateAgainstLedger is the ledger pass: resolve every product, check
// sufficiency against the stock visible to tx, and capture the name/price
// snapshots. Assumes the rows are already locked; reads only.
func validateAgainstLedger(ctx context.Context, tx pgx.Tx, items []ItemInput) ([]validatedItem, decimal.Decimal, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	rows, err := tx.Query(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	type ledgerRow struct {
		name  string
		price decimal.Decimal
		stock int
	}
	byID := make(map[string]ledgerRow, len(items))
	for rows.Next() {
		var id string
		var lr ledgerRow
		if err := rows.Scan(&id, &lr.name, &lr.price, &lr.stock); err != nil {
			return nil, decimal.Zero, err
		}
		byID[id] = lr
	}
	if err := rows.Err(); err != nil {
		return nil, decimal.Zero, err
	}

	out := make([]validatedItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		lr, ok := byID[it.ProductID]
		if !ok {
			return nil, decimal.Zero, &fault.NotFound{Entity: "product", ID: it.ProductID}
		}
		if lr.stock < it.Quantity {
			return nil, decimal.Zero, &fault.InsufficientStock{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: lr.stock,
			}
		}
		line := lr.price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		out = append(out, validatedItem{
			ProductID:   it.ProductID,
			ProductName: lr.name,
			Quantity:    it.Quantity,
			UnitPrice:   lr.price,
			LineTotal:   line,
		})
		total = total.Add(line)
	}
	return out, total, nil
}
