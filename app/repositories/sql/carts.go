package sql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Carts struct {
	db *gorm.DB
}

func (r *Carts) Get(ctx context.Context, userID string) (models.Cart, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var c models.Cart
	err := translate(r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error)
	if err == repositories.ErrNotFound {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c, nil
}

// Replace upserts the whole item list in one statement.
func (r *Carts) Replace(ctx context.Context, userID string, items []models.CartItem) (models.Cart, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	if items == nil {
		items = []models.CartItem{}
	}
	c := models.Cart{UserID: userID, Items: items, UpdatedAt: now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&c).Error
	if err != nil {
		return models.Cart{}, translate(err)
	}
	return c, nil
}

func (r *Carts) DeleteByUser(ctx context.Context, userID string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}
