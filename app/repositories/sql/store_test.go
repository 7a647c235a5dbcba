package sql_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	sqlstore "github.com/shashiranjanraj/storefront/app/repositories/sql"
	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func newStore(t *testing.T) *repositories.Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, "sqlite", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)

	_, err = migration.New(db, io.Discard).Run(ctx)
	require.NoError(t, err)

	store := sqlstore.NewStore(db)
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func TestOrders_CreateOnceRejectsSecondSession(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := &models.Order{SessionID: "cs_1", UserID: "u1", Total: decimal.RequireFromString("12.50"), Status: models.OrderProcessing}
	require.NoError(t, store.Orders.CreateOnce(ctx, first))
	assert.NotEmpty(t, first.ID)

	err := store.Orders.CreateOnce(ctx, &models.Order{SessionID: "cs_1", UserID: "u1", Total: decimal.NewFromInt(1), Status: models.OrderProcessing})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	got, err := store.Orders.FindBySession(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("12.50")))
}

func TestOrders_CreateOnceConcurrent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Orders.CreateOnce(ctx, &models.Order{SessionID: "cs_race", UserID: "u1", Status: models.OrderProcessing})
			if err == nil {
				created.Add(1)
			} else if !errors.Is(err, repositories.ErrDuplicate) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
}

func TestOrders_RevenueAndOrdering(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	for i, o := range []models.Order{
		{SessionID: "a", UserID: "u1", Total: decimal.RequireFromString("10.25"), CreatedAt: jan},
		{SessionID: "b", UserID: "u1", Total: decimal.RequireFromString("4.75"), CreatedAt: jan.Add(time.Hour)},
		{SessionID: "c", UserID: "u2", Total: decimal.RequireFromString("20"), CreatedAt: feb},
	} {
		o := o
		o.Status = models.OrderProcessing
		require.NoError(t, store.Orders.CreateOnce(ctx, &o), "order %d", i)
	}

	total, err := store.Orders.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(35)), total.String())

	months, err := store.Orders.MonthlyRevenue(ctx)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-01", months[0].Month)
	assert.True(t, months[0].Revenue.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "2024-02", months[1].Month)

	mine, err := store.Orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b", mine[0].SessionID)

	n, err := store.Orders.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestOrders_EmptyRevenueIsZero(t *testing.T) {
	store := newStore(t)

	total, err := store.Orders.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestCarts_UpsertReplacesWholeList(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	empty, err := store.Carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)

	_, err = store.Carts.Replace(ctx, "u1", []models.CartItem{
		{ID: "1", ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(3)},
		{ID: "2", ProductID: "p2", Quantity: 2, Price: decimal.NewFromInt(4)},
	})
	require.NoError(t, err)

	_, err = store.Carts.Replace(ctx, "u1", []models.CartItem{{ID: "3", ProductID: "p3", Quantity: 5}})
	require.NoError(t, err)

	got, err := store.Carts.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p3", got.Items[0].ProductID)

	require.NoError(t, store.Carts.DeleteByUser(ctx, "u1"))
	got, err = store.Carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestUsers_UniqueEmailAndAddress(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	u := &models.User{Email: "Ada@Example.com", Name: "Ada", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, store.Users.Create(ctx, u))
	assert.Equal(t, "ada@example.com", u.Email)

	err := store.Users.Create(ctx, &models.User{Email: "ada@example.com", Name: "Other", PasswordHash: "y", Role: models.RoleUser})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	updated, err := store.Users.UpdateAddress(ctx, u.ID, models.Address{Street: "1 Main", City: "Kyiv", State: "K", Zip: "01001", Country: "UA"})
	require.NoError(t, err)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Kyiv", updated.Address.City)

	_, err = store.Users.UpdateAddress(ctx, "missing", models.Address{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	found, err := store.Users.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestProducts_CRUDAndSearch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	p := &models.Product{Name: "Trail Runner", Description: "Light shoe", Category: "Shoes", Price: decimal.RequireFromString("89.99"), InStock: true, Images: []string{"a.jpg"}}
	require.NoError(t, store.Products.Create(ctx, p))
	require.NoError(t, store.Products.Create(ctx, &models.Product{Name: "Oud", Category: "Perfumes", Price: decimal.NewFromInt(120)}))

	shoes, err := store.Products.List(ctx, "Shoes")
	require.NoError(t, err)
	require.Len(t, shoes, 1)
	assert.Equal(t, []string{"a.jpg"}, shoes[0].Images)

	hits, err := store.Products.Search(ctx, "runner oud")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	p.Name = "Trail Runner 2"
	require.NoError(t, store.Products.Update(ctx, p))
	got, err := store.Products.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trail Runner 2", got.Name)

	assert.ErrorIs(t, store.Products.Update(ctx, &models.Product{ID: "missing", Name: "x"}), repositories.ErrNotFound)
	require.NoError(t, store.Products.Delete(ctx, p.ID))
	assert.ErrorIs(t, store.Products.Delete(ctx, p.ID), repositories.ErrNotFound)
	_, err = store.Products.Find(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
