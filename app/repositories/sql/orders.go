package sql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Orders struct {
	db *gorm.DB
}

// CreateOnce relies on the unique session_id index; a second insert for the
// same session is reported as ErrDuplicate.
func (r *Orders) CreateOnce(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	o.UpdatedAt = o.CreatedAt
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *Orders) FindBySession(ctx context.Context, sessionID string) (models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var o models.Order
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&o).Error
	return o, translate(err)
}

func (r *Orders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	out := []models.Order{}
	return out, r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&out).Error
}

func (r *Orders) All(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	out := []models.Order{}
	return out, r.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
}

func (r *Orders) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

func (r *Orders) Count(ctx context.Context) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
}

func (r *Orders) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	defer metrics.ObserveDBQuery("aggregate", time.Now())

	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).Select("SUM(total)").Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// MonthlyRevenue buckets in Go: month extraction differs per dialect and the
// rollup only needs two columns.
func (r *Orders) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	defer metrics.ObserveDBQuery("aggregate", time.Now())

	var rows []models.Order
	if err := r.db.WithContext(ctx).Select("total", "created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return repositories.RollupMonthly(rows), nil
}
