// Package mongo implements the repositories on MongoDB. Document ids are
// ObjectID hex strings; uniqueness of orders.sessionId, users.email and
// carts.userId is enforced by indexes created in EnsureIndexes.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/storefront/app/repositories"
)

const (
	colProducts = "products"
	colUsers    = "users"
	colCarts    = "carts"
	colOrders   = "orders"
)

// Connect opens a client with the decimal registry and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetRegistry(Registry()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}

// NewStore builds the repositories over db. The client is disconnected by
// Store.Close.
func NewStore(client *mongo.Client, db *mongo.Database) *repositories.Store {
	return repositories.NewStore(
		&Products{col: db.Collection(colProducts)},
		&Users{col: db.Collection(colUsers)},
		&Carts{col: db.Collection(colCarts)},
		&Orders{col: db.Collection(colOrders)},
		func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		client.Disconnect,
	)
}

// EnsureIndexes creates the unique and text indexes the repositories rely on.
// It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		colOrders: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_session")},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("user_recent")},
		},
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
		colCarts: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user")},
		},
		colProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
			{
				Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "category", Value: "text"}},
				Options: options.Index().SetName("catalog_text"),
			},
		},
	}

	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: indexes on %s: %w", col, err)
		}
	}
	return nil
}

func newID() string { return primitive.NewObjectID().Hex() }

// checkID rejects strings that are not ObjectID hex, mirroring what the
// store would refuse to match.
func checkID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return repositories.ErrInvalidID
	}
	return nil
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	default:
		return err
	}
}
