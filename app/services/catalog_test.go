package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/repositories/memory"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cache"
)

type countingProducts struct {
	repositories.ProductRepository
	lists atomic.Int32
}

func (c *countingProducts) List(ctx context.Context, category string) ([]models.Product, error) {
	c.lists.Add(1)
	return c.ProductRepository.List(ctx, category)
}

func TestCatalog_ListIsCachedUntilWrite(t *testing.T) {
	repo := &countingProducts{ProductRepository: memory.NewProducts()}
	svc := services.NewCatalogService(repo, cache.New(cache.NewMemoryDriver(), "test"), time.Minute)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.ProductInput{Name: "Shirt", Price: decimal.NewFromInt(20), Category: "tops"})
	require.NoError(t, err)

	first, err := svc.List(ctx, "")
	require.NoError(t, err)
	_, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, int32(1), repo.lists.Load())

	_, err = svc.Create(ctx, services.ProductInput{Name: "Hat", Price: decimal.NewFromInt(10), Category: "hats"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2, "a write invalidates cached lists")
	assert.Equal(t, int32(2), repo.lists.Load())
}

func TestCatalog_WorksWithoutCache(t *testing.T) {
	svc := services.NewCatalogService(memory.NewProducts(), nil, time.Minute)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.ProductInput{Name: " Shirt ", Price: decimal.RequireFromString("9.999"), Category: "tops"})
	require.NoError(t, err)
	assert.Equal(t, "Shirt", p.Name)
	assert.True(t, decimal.RequireFromString("10").Equal(p.Price))
	assert.True(t, p.InStock)
	assert.NotNil(t, p.Images)

	got, err := svc.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCatalog_UpdateKeepsReviews(t *testing.T) {
	repo := memory.NewProducts()
	svc := services.NewCatalogService(repo, nil, time.Minute)
	ctx := context.Background()

	p := models.Product{Name: "Shirt", Category: "tops", Reviews: []models.Review{{ID: "r1", Comment: "nice"}}}
	require.NoError(t, repo.Create(ctx, &p))

	inStock := false
	updated, err := svc.Update(ctx, p.ID, services.ProductInput{Name: "Shirt v2", Category: "tops", InStock: &inStock})
	require.NoError(t, err)
	assert.Equal(t, "Shirt v2", updated.Name)
	assert.False(t, updated.InStock)
	require.Len(t, updated.Reviews, 1)
	assert.Equal(t, "nice", updated.Reviews[0].Comment)

	_, err = svc.Update(ctx, "missing", services.ProductInput{Name: "x", Category: "y"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCatalog_SearchRequiresQuery(t *testing.T) {
	svc := services.NewCatalogService(memory.NewProducts(), nil, time.Minute)
	_, err := svc.Search(context.Background(), "   ")

	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "q")
}

func TestCatalog_Delete(t *testing.T) {
	svc := services.NewCatalogService(memory.NewProducts(), cache.New(cache.NewMemoryDriver(), "test"), time.Minute)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.ProductInput{Name: "Shirt", Category: "tops"})
	require.NoError(t, err)
	_, err = svc.Find(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Find(ctx, p.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), services.ErrNotFound)
}
