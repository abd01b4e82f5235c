package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
	"github.com/lucasvieira/go-stock-orders/internal/postgres"
)

// Repo owns the product ledger. Stock mutations here are direct edits;
// order-driven deltas go through the orders package instead.
type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, price, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, name, description string, price decimal.Decimal, stock int) (*Product, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	description, err = validDescription(description)
	if err != nil {
		return nil, err
	}
	if err := validPrice(price); err != nil {
		return nil, err
	}
	if err := validStock(stock); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, description, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productCols, id, name, description, price, stock)
	p, err := scanProduct(row)
	if err != nil {
		if postgres.ErrCode(err) == postgres.CodeUniqueViolation {
			return nil, fault.Validationf("product name already in use: %s", name)
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &fault.NotFound{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Product, error) {
	if offset < 0 {
		return nil, fault.Validationf("offset must not be negative")
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+`
		FROM products ORDER BY name OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update applies a partial patch inside one transaction. The row is locked
// first so a concurrent order commit cannot interleave with a direct stock
// edit.
func (r *Repo) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &fault.NotFound{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}

	if patch.Name != nil {
		name, err := validName(*patch.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if patch.Description != nil {
		desc, err := validDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		p.Description = desc
	}
	if patch.Price != nil {
		if err := validPrice(*patch.Price); err != nil {
			return nil, err
		}
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		if err := validStock(*patch.Stock); err != nil {
			return nil, err
		}
		p.Stock = *patch.Stock
	}

	newName := p.Name
	row = tx.QueryRow(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, stock=$5, updated_at=now()
		WHERE id=$1
		RETURNING `+productCols, id, p.Name, p.Description, p.Price, p.Stock)
	p, err = scanProduct(row)
	if err != nil {
		if postgres.ErrCode(err) == postgres.CodeUniqueViolation {
			return nil, fault.Validationf("product name already in use: %s", newName)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if postgres.IsContention(err) {
			return nil, fault.Conflictf("concurrent update on product %s, retry", id)
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a product unless an order item still references it.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var referenced bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id=$1)`, id).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}
	if referenced {
		return fault.Conflictf("product %s is referenced by existing orders", id)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		// FK backstop in case an order commits between the check and the delete
		if postgres.ErrCode(err) == postgres.CodeForeignKeyViolation {
			return fault.Conflictf("product %s is referenced by existing orders", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return &fault.NotFound{Entity: "product", ID: id}
	}
	return tx.Commit(ctx)
}
