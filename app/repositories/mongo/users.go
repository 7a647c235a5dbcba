package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Users struct {
	col *mongo.Collection
}

func (r *Users) findOne(ctx context.Context, filter bson.D) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	return u, translate(err)
}

func (r *Users) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}})
}

func (r *Users) FindByID(ctx context.Context, id string) (models.User, error) {
	if err := checkID(id); err != nil {
		return models.User{}, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if u.ID == "" {
		u.ID = newID()
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	_, err := r.col.InsertOne(ctx, u)
	return translate(err)
}

func (r *Users) UpdateAddress(ctx context.Context, id string, addr models.Address) (models.User, error) {
	if err := checkID(id); err != nil {
		return models.User{}, err
	}
	defer metrics.ObserveDBQuery("update", time.Now())

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "address", Value: addr},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&u)
	return u, translate(err)
}

func (r *Users) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	defer metrics.ObserveDBQuery("delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *Users) All(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}
