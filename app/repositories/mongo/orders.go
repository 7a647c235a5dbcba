package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Orders struct {
	col *mongo.Collection
}

// CreateOnce relies on the uniq_session index: a second insert for the same
// session fails with a duplicate-key error, mapped to ErrDuplicate.
func (r *Orders) CreateOnce(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt
	_, err := r.col.InsertOne(ctx, o)
	return translate(err)
}

func (r *Orders) FindBySession(ctx context.Context, sessionID string) (models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var o models.Order
	err := r.col.FindOne(ctx, bson.D{{Key: "sessionId", Value: sessionID}}).Decode(&o)
	return o, translate(err)
}

func (r *Orders) list(ctx context.Context, filter bson.D) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Orders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, bson.D{{Key: "userId", Value: userID}})
}

func (r *Orders) All(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, bson.D{})
}

func (r *Orders) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res, err := r.col.DeleteMany(ctx, bson.D{{Key: "userId", Value: userID}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *Orders) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}

func (r *Orders) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	defer metrics.ObserveDBQuery("aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, err
	}

	var rows []struct {
		Revenue decimal.Decimal `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Revenue, nil
}

// MonthlyRevenue groups by UTC year and month of createdAt, ascending.
func (r *Orders) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	defer metrics.ObserveDBQuery("aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$createdAt"}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: "$createdAt"}}},
			}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Revenue decimal.Decimal `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]models.MonthlyRevenue, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MonthlyRevenue{
			Month:   fmt.Sprintf("%04d-%02d", row.ID.Year, row.ID.Month),
			Revenue: row.Revenue,
		})
	}
	return out, nil
}
