package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const catalogNamespace = "products"

type ProductInput struct {
	Name        string          `json:"name"        validate:"required,min=1,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	Category    string          `json:"category"    validate:"required,min=1,max=100"`
	Images      []string        `json:"images"      validate:"dive,url"`
	Rating      float64         `json:"rating"      validate:"gte=0,lte=5"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	InStock     *bool           `json:"inStock"`
}

// CatalogService serves product reads through a generation-keyed cache.
// Every write bumps the generation so stale lists are never served.
type CatalogService struct {
	products repositories.ProductRepository
	cache    *cache.Cache
	ttl      time.Duration
}

// NewCatalogService accepts a nil cache.
func NewCatalogService(products repositories.ProductRepository, c *cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{products: products, cache: c, ttl: ttl}
}

func (s *CatalogService) key(ctx context.Context, parts ...string) string {
	return fmt.Sprintf("%s:v%d:%s", catalogNamespace, s.cache.Version(ctx, catalogNamespace), strings.Join(parts, ":"))
}

// List returns every product, or those in category.
func (s *CatalogService) List(ctx context.Context, category string) ([]models.Product, error) {
	return cache.Remember(ctx, s.cache, s.key(ctx, "list", category), s.ttl, func() ([]models.Product, error) {
		return s.products.List(ctx, category)
	})
}

// Search runs a free-text query.
func (s *CatalogService) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, Invalid("q", "The q field is required.")
	}
	return cache.Remember(ctx, s.cache, s.key(ctx, "search", strings.ToLower(q)), s.ttl, func() ([]models.Product, error) {
		return s.products.Search(ctx, q)
	})
}

func (s *CatalogService) Find(ctx context.Context, id string) (models.Product, error) {
	return cache.Remember(ctx, s.cache, s.key(ctx, "one", id), s.ttl, func() (models.Product, error) {
		return s.products.Find(ctx, id)
	})
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	p := models.Product{InStock: true, Reviews: []models.Review{}}
	in.apply(&p)

	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Update overwrites the editable fields and keeps reviews.
func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	in.apply(&p)

	if err := s.products.Update(ctx, &p); err != nil {
		return models.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, catalogNamespace); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache bump failed", "error", err)
	}
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.Images = nonNil(in.Images)
	p.Rating = in.Rating
	p.Sizes = nonNil(in.Sizes)
	p.Colors = nonNil(in.Colors)
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
