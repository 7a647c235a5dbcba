package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Products struct {
	col *mongo.Collection
}

func (r *Products) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Products) List(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.D{}
	if category != "" {
		filter = bson.D{{Key: "category", Value: category}}
	}
	return r.find(ctx, filter)
}

func (r *Products) Search(ctx context.Context, q string) ([]models.Product, error) {
	filter := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: q}}}}
	opts := options.Find().
		SetProjection(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}).
		SetSort(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}})
	return r.find(ctx, filter, opts)
}

func (r *Products) Find(ctx context.Context, id string) (models.Product, error) {
	if err := checkID(id); err != nil {
		return models.Product{}, err
	}
	defer metrics.ObserveDBQuery("select", time.Now())

	var p models.Product
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	return p, translate(err)
}

func (r *Products) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *Products) Update(ctx context.Context, p *models.Product) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	defer metrics.ObserveDBQuery("update", time.Now())

	p.UpdatedAt = time.Now().UTC()
	set := bson.D{
		{Key: "name", Value: p.Name},
		{Key: "description", Value: p.Description},
		{Key: "price", Value: p.Price},
		{Key: "category", Value: p.Category},
		{Key: "images", Value: p.Images},
		{Key: "rating", Value: p.Rating},
		{Key: "reviews", Value: p.Reviews},
		{Key: "sizes", Value: p.Sizes},
		{Key: "colors", Value: p.Colors},
		{Key: "inStock", Value: p.InStock},
		{Key: "updatedAt", Value: p.UpdatedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: p.ID}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(p)
	return translate(err)
}

func (r *Products) Delete(ctx context.Context, id string) error {
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

func (r *Products) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}
