package reports

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lucasvieira/go-stock-orders/internal/catalog"
	"github.com/lucasvieira/go-stock-orders/internal/fault"
	"github.com/lucasvieira/go-stock-orders/internal/orders"
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

func seed(t *testing.T, db *pgxpool.Pool, name string, stock int) *catalog.Product {
	t.Helper()
	p, err := (&catalog.Repo{DB: db}).Create(
		context.Background(), name, "", decimal.RequireFromString("10.00"), stock)
	require.NoError(t, err)
	return p
}

func TestLowStockRejectsNegativeThreshold(t *testing.T) {
	repo := &Repo{}
	_, err := repo.LowStock(context.Background(), -1)
	var ve *fault.Validation
	require.ErrorAs(t, err, &ve)
}

func TestLowStockOrdering(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	seed(t, db, "A", 2)
	seed(t, db, "B", 10)
	seed(t, db, "C", 0)

	got, err := repo.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "C", got[0].Name)
	require.Equal(t, "A", got[1].Name)

	// threshold is exclusive: a product at exactly the threshold is fine
	atLimit, err := repo.LowStock(ctx, 2)
	require.NoError(t, err)
	require.Len(t, atLimit, 1)
	require.Equal(t, "C", atLimit[0].Name)

	none, err := repo.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestStatisticsAggregates(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db, LowStockThreshold: 5}
	ctx := context.Background()

	p1 := seed(t, db, "P1", 30)
	seed(t, db, "P2", 2)

	orderRepo := &orders.Repo{DB: db}
	_, err := orderRepo.CreateOrder(ctx, "Ana", []orders.ItemInput{{ProductID: p1.ID, Quantity: 3}})
	require.NoError(t, err)
	_, err = orderRepo.CreateOrder(ctx, "Bia", []orders.ItemInput{{ProductID: p1.ID, Quantity: 1}})
	require.NoError(t, err)

	s, err := repo.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, s.TotalProducts)
	require.Equal(t, 2, s.TotalOrders)
	require.Equal(t, int64(28), s.TotalStockUnits) // 30-4 ordered, plus 2
	require.True(t, s.TotalRevenue.Equal(decimal.RequireFromString("40.00")))
	require.True(t, s.AverageOrderValue.Equal(decimal.RequireFromString("20.00")))
	require.Equal(t, 1, s.LowStockProducts)
	require.Equal(t, 5, s.LowStockThreshold)
}

func TestStatisticsIdempotentRead(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db, LowStockThreshold: 5}
	ctx := context.Background()

	seed(t, db, "Solo", 1)

	first, err := repo.Statistics(ctx)
	require.NoError(t, err)
	second, err := repo.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, first.TotalProducts, second.TotalProducts)
	require.Equal(t, first.TotalStockUnits, second.TotalStockUnits)
	require.True(t, first.TotalRevenue.Equal(second.TotalRevenue))
	require.Equal(t, first.LowStockProducts, second.LowStockProducts)
}

func TestStatisticsEmptyLedger(t *testing.T) {
	db := testDB(t)
	repo := &Repo{DB: db, LowStockThreshold: 5}

	s, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	require.Zero(t, s.TotalProducts)
	require.Zero(t, s.TotalOrders)
	require.True(t, s.TotalRevenue.IsZero())
	require.True(t, s.AverageOrderValue.IsZero())
}
