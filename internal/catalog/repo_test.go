package catalog

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
	"github.com/lucasvieira/go-stock-orders/internal/postgres"
)

func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.Exec(ctx, `TRUNCATE order_items, orders, products`)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// The structural checks run before any store access, so an empty repo is
// enough for them.
func TestCreateRejectsBadInput(t *testing.T) {
	repo := &Repo{}
	ctx := context.Background()

	cases := []struct {
		name    string
		product string
		price   string
		stock   int
	}{
		{"empty name", "   ", "10.00", 1},
		{"overlong name", strings.Repeat("x", maxNameLen+1), "10.00", 1},
		{"zero price", "Thing", "0", 1},
		{"negative price", "Thing", "-1.50", 1},
		{"negative stock", "Thing", "10.00", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.product, "", decimal.RequireFromString(tc.price), tc.stock)
			var ve *fault.Validation
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestCreateTrimsAndReturnsProduct(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}

	p, err := repo.Create(context.Background(), "  Notebook  ", "  14 inch  ",
		decimal.RequireFromString("2500.00"), 7)
	require.NoError(t, err)
	require.Equal(t, "Notebook", p.Name)
	require.Equal(t, "14 inch", p.Description)
	require.Equal(t, 7, p.Stock)
	require.NotEmpty(t, p.ID)
	require.False(t, p.CreatedAt.IsZero())
}

func TestCreateDuplicateName(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	_, err := repo.Create(ctx, "Webcam", "", decimal.RequireFromString("80.00"), 5)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "Webcam", "", decimal.RequireFromString("90.00"), 3)
	var ve *fault.Validation
	require.ErrorAs(t, err, &ve)
}

func TestGetAndList(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	a, err := repo.Create(ctx, "Alpha", "", decimal.RequireFromString("1.00"), 1)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "Beta", "", decimal.RequireFromString("2.00"), 2)
	require.NoError(t, err)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Alpha", got.Name)

	_, err = repo.Get(ctx, "missing")
	var nf *fault.NotFound
	require.ErrorAs(t, err, &nf)

	page, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "Alpha", page[0].Name)

	empty, err := repo.List(ctx, 5, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestUpdatePartialPatch(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	p, err := repo.Create(ctx, "Chair", "office", decimal.RequireFromString("120.00"), 4)
	require.NoError(t, err)

	stock := 20
	updated, err := repo.Update(ctx, p.ID, Patch{Stock: &stock})
	require.NoError(t, err)
	require.Equal(t, 20, updated.Stock)
	require.Equal(t, "Chair", updated.Name, "untouched fields survive the patch")
	require.True(t, updated.Price.Equal(p.Price))

	bad := -1
	_, err = repo.Update(ctx, p.ID, Patch{Stock: &bad})
	var ve *fault.Validation
	require.ErrorAs(t, err, &ve)

	_, err = repo.Update(ctx, "missing", Patch{Stock: &stock})
	var nf *fault.NotFound
	require.ErrorAs(t, err, &nf)
}

func TestUpdateKeepsNameUniqueness(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	_, err := repo.Create(ctx, "Taken", "", decimal.RequireFromString("1.00"), 1)
	require.NoError(t, err)
	p, err := repo.Create(ctx, "Free", "", decimal.RequireFromString("1.00"), 1)
	require.NoError(t, err)

	name := "Taken"
	_, err = repo.Update(ctx, p.ID, Patch{Name: &name})
	var ve *fault.Validation
	require.ErrorAs(t, err, &ve)

	// renaming to its own name is not a collision
	own := "Free"
	_, err = repo.Update(ctx, p.ID, Patch{Name: &own})
	require.NoError(t, err)
}

func TestDeleteGuardedByOrderReferences(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	p, err := repo.Create(ctx, "Guarded", "", decimal.RequireFromString("9.99"), 10)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `INSERT INTO orders(id, customer, total) VALUES ('o1', 'Ana', 9.99)`)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `
		INSERT INTO order_items(id, order_id, product_id, product_name, quantity, unit_price, line_total)
		VALUES ('i1', 'o1', $1, 'Guarded', 1, 9.99, 9.99)`, p.ID)
	require.NoError(t, err)

	err = repo.Delete(ctx, p.ID)
	var cf *fault.Conflict
	require.ErrorAs(t, err, &cf)

	_, err = db.Exec(ctx, `DELETE FROM order_items WHERE id='i1'`)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, p.ID))

	err = repo.Delete(ctx, p.ID)
	var nf *fault.NotFound
	require.ErrorAs(t, err, &nf)
}
