package order_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/chars3/caplink-store/database/dbtest"
	"github.com/chars3/caplink-store/models"
	"github.com/chars3/caplink-store/services/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSellerStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rival := dbtest.User(t, f.db, "rival", models.RoleSeller)
	a := dbtest.Product(t, f.db, f.seller, "Alpha", "10.00")
	b := dbtest.Product(t, f.db, f.seller, "Beta", "4.00")
	dbtest.Product(t, f.db, f.seller, "Gamma", "1.00")
	foreign := dbtest.Product(t, f.db, rival, "Foreign", "100.00")

	f.buy(t, f.buyer.ID, map[*models.Product]int{a: 3, b: 5, foreign: 2})

	// A later price change must not move revenue.
	require.NoError(t, f.db.Model(a).Update("price", decimal.RequireFromString("50.00")).Error)

	stats, err := f.orders.SellerStats(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalProducts)
	assert.EqualValues(t, 8, stats.TotalSold)
	assert.True(t, decimal.RequireFromString("50.00").Equal(stats.TotalRevenue), "revenue was %s", stats.TotalRevenue)
	require.NotNil(t, stats.BestSellingProduct)
	assert.Equal(t, b.ID, stats.BestSellingProduct.ID)
}

func TestSellerStatsWithoutSales(t *testing.T) {
	f := newFixture(t)
	dbtest.Product(t, f.db, f.seller, "Alpha", "10.00")

	stats, err := f.orders.SellerStats(context.Background(), f.seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalProducts)
	assert.Zero(t, stats.TotalSold)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Nil(t, stats.BestSellingProduct)
}

func TestSellerStatsTieGoesToLowestID(t *testing.T) {
	f := newFixture(t)
	a := dbtest.Product(t, f.db, f.seller, "Alpha", "1.00")
	b := dbtest.Product(t, f.db, f.seller, "Beta", "2.00")

	f.buy(t, f.buyer.ID, map[*models.Product]int{a: 2, b: 2})

	want := a.ID
	if b.ID < want {
		want = b.ID
	}
	for i := 0; i < 5; i++ {
		stats, err := f.orders.SellerStats(context.Background(), f.seller.ID)
		require.NoError(t, err)
		require.NotNil(t, stats.BestSellingProduct)
		assert.Equal(t, want, stats.BestSellingProduct.ID)
	}
}

func TestSellerStatsCountsDeletedProductSales(t *testing.T) {
	f := newFixture(t)
	a := dbtest.Product(t, f.db, f.seller, "Alpha", "7.00")
	f.buy(t, f.buyer.ID, map[*models.Product]int{a: 2})
	require.NoError(t, f.db.Delete(a).Error)

	stats, err := f.orders.SellerStats(context.Background(), f.seller.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.TotalSold)
	assert.True(t, decimal.RequireFromString("14.00").Equal(stats.TotalRevenue))
	require.NotNil(t, stats.BestSellingProduct)
	assert.Equal(t, a.ID, stats.BestSellingProduct.ID)
}

func TestSellerSalesPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rival := dbtest.User(t, f.db, "rival", models.RoleSeller)
	mug := dbtest.Product(t, f.db, f.seller, "Blue Mug", "5.00")
	foreign := dbtest.Product(t, f.db, rival, "Foreign Mug", "5.00")

	var placed []*models.Order
	for i := 0; i < 5; i++ {
		placed = append(placed, f.buy(t, f.buyer.ID, map[*models.Product]int{mug: 1, foreign: 1}))
		time.Sleep(2 * time.Millisecond)
	}

	page, err := f.orders.SellerSales(ctx, f.seller.ID, order.SalesQuery{PageParams: models.PageParams{Skip: 0, Take: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, placed[4].ID, page.Data[0].OrderID)
	assert.Equal(t, placed[3].ID, page.Data[1].OrderID)
	for _, it := range page.Data {
		assert.Equal(t, mug.ID, it.ProductID)
		require.NotNil(t, it.Product)
		require.NotNil(t, it.OrderedAt)
	}
	assert.WithinDuration(t, placed[4].CreatedAt, *page.Data[0].OrderedAt, time.Second)
	assert.False(t, page.Data[0].OrderedAt.Before(*page.Data[1].OrderedAt))

	// A sales row reports when it was ordered, not a partly loaded order.
	raw, err := json.Marshal(page.Data[0])
	require.NoError(t, err)
	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &row))
	assert.Contains(t, row, "ordered_at")
	assert.NotContains(t, row, "order")

	last, err := f.orders.SellerSales(ctx, f.seller.ID, order.SalesQuery{PageParams: models.PageParams{Skip: 4, Take: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 5, last.Total)
	require.Len(t, last.Data, 1)
	assert.Equal(t, placed[0].ID, last.Data[0].OrderID)

	beyond, err := f.orders.SellerSales(ctx, f.seller.ID, order.SalesQuery{PageParams: models.PageParams{Skip: 10, Take: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 5, beyond.Total)
	assert.Empty(t, beyond.Data)
}

func TestSellerSalesSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mug := dbtest.Product(t, f.db, f.seller, "Blue Mug", "5.00")
	pen := dbtest.Product(t, f.db, f.seller, "Red Pen", "1.00")
	pct := dbtest.Product(t, f.db, f.seller, "100% Cotton", "9.00")
	f.buy(t, f.buyer.ID, map[*models.Product]int{mug: 1, pen: 2, pct: 1})

	cases := []struct {
		search string
		want   []string
	}{
		{search: "mug", want: []string{mug.ID}},
		{search: "  RED ", want: []string{pen.ID}},
		{search: "%", want: []string{pct.ID}},
		{search: "_", want: nil},
		{search: "", want: []string{mug.ID, pen.ID, pct.ID}},
	}
	for _, tc := range cases {
		t.Run("search "+tc.search, func(t *testing.T) {
			page, err := f.orders.SellerSales(ctx, f.seller.ID, order.SalesQuery{
				PageParams: models.PageParams{Take: 10},
				Search:     tc.search,
			})
			require.NoError(t, err)
			assert.EqualValues(t, len(tc.want), page.Total)

			var got []string
			for _, it := range page.Data {
				got = append(got, it.ProductID)
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestSellerStatsReadsOneSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mug := dbtest.Product(t, f.db, f.seller, "mug", "10.00")
	f.buy(t, f.buyer.ID, map[*models.Product]int{mug: 2})

	var conns []gorm.ConnPool
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").Register("test:record_conn", func(tx *gorm.DB) {
		conns = append(conns, tx.Statement.ConnPool)
	}))

	stats, err := f.orders.SellerStats(ctx, f.seller.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.BestSellingProduct)

	// Product count, sold items and best seller lookup.
	require.Len(t, conns, 3)
	first, ok := conns[0].(*sql.Tx)
	require.True(t, ok, "stats read outside a transaction")
	for _, c := range conns[1:] {
		assert.Same(t, first, c)
	}
}
