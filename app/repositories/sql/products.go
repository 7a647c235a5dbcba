package sql

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Products struct {
	db *gorm.DB
}

func (r *Products) List(ctx context.Context, category string) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	q := r.db.WithContext(ctx).Order("created_at asc")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	out := []models.Product{}
	return out, q.Find(&out).Error
}

// Search matches any whitespace-separated term against name, description
// and category, case-insensitively.
func (r *Products) Search(ctx context.Context, q string) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	terms := strings.Fields(strings.ToLower(q))
	out := []models.Product{}
	if len(terms) == 0 {
		return out, nil
	}

	cond := r.db.WithContext(ctx)
	for i, t := range terms {
		like := "%" + t + "%"
		clause := "LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?"
		if i == 0 {
			cond = cond.Where(clause, like, like, like)
		} else {
			cond = cond.Or(clause, like, like, like)
		}
	}
	return out, r.db.WithContext(ctx).Where(cond).Order("created_at asc").Find(&out).Error
}

func (r *Products) Find(ctx context.Context, id string) (models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var p models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, translate(err)
}

func (r *Products) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt, p.UpdatedAt = now(), now()
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *Products) Update(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	p.UpdatedAt = now()
	res := r.db.WithContext(ctx).
		Model(&models.Product{ID: p.ID}).
		Select("*").Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	fresh, err := r.Find(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = fresh
	return nil
}

func (r *Products) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *Products) Count(ctx context.Context) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
}
