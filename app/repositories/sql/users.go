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

type Users struct {
	db *gorm.DB
}

func (r *Users) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	return u, translate(err)
}

func (r *Users) FindByID(ctx context.Context, id string) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return u, translate(err)
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if u.ID == "" {
		u.ID = newID()
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt, u.UpdatedAt = now(), now()
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *Users) UpdateAddress(ctx context.Context, id string, addr models.Address) (models.User, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).
		Model(&models.User{ID: id}).
		Select("address", "updated_at").
		Updates(&models.User{Address: &addr, UpdatedAt: now()})
	if res.Error != nil {
		return models.User{}, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.User{}, repositories.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *Users) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *Users) All(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	out := []models.User{}
	return out, r.db.WithContext(ctx).Order("created_at asc").Find(&out).Error
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
}
