package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Carts struct {
	col *mongo.Collection
}

func (r *Carts) Get(ctx context.Context, userID string) (models.Cart, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var c models.Cart
	err := r.col.FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
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

// Replace upserts the whole item list in one write.
func (r *Carts) Replace(ctx context.Context, userID string, items []models.CartItem) (models.Cart, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	if items == nil {
		items = []models.CartItem{}
	}
	c := models.Cart{UserID: userID, Items: items, UpdatedAt: time.Now().UTC()}
	_, err := r.col.UpdateOne(ctx,
		bson.D{{Key: "userId", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "items", Value: c.Items}, {Key: "updatedAt", Value: c.UpdatedAt}}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.Cart{}, translate(err)
	}
	return c, nil
}

func (r *Carts) DeleteByUser(ctx context.Context, userID string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	_, err := r.col.DeleteOne(ctx, bson.D{{Key: "userId", Value: userID}})
	return err
}
