package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store holds the Mongo client and one handle per collection. It is built
// once at startup and passed into each service.
type Store struct {
	Client *mongo.Client

	Medicines      *mongo.Collection
	Users          *mongo.Collection
	Carts          *mongo.Collection
	Categories     *mongo.Collection
	CategoryImages *mongo.Collection
	Banners        *mongo.Collection
	Payments       *mongo.Collection
	Idempotency    *mongo.Collection
}

// Connect dials MongoDB and returns a Store bound to the named database.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	d := client.Database(dbName)
	return &Store{
		Client:         client,
		Medicines:      d.Collection("medicines"),
		Users:          d.Collection("users"),
		Carts:          d.Collection("carts"),
		Categories:     d.Collection("categories"),
		CategoryImages: d.Collection("categoryImages"),
		Banners:        d.Collection("banners"),
		Payments:       d.Collection("payments"),
		Idempotency:    d.Collection("idempotency"),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and TTL indexes the services rely on:
// unique user email, unique payment transactionId, and a unique idempotency
// key that expires after its record's expires_at.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	}); err != nil {
		return err
	}

	if _, err := s.Payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"transactionId": 1},
		Options: options.Index().SetUnique(true).SetName("unique_txn"),
	}); err != nil {
		return err
	}

	_, err := s.Idempotency.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"key": 1},
			Options: options.Index().SetUnique(true).SetName("unique_key"),
		},
		{
			Keys:    bson.M{"expires_at": 1},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	})
	return err
}

// UserRole looks up the stored role for an email. Used by the role-gating
// middleware; one findOne per gated request.
func (s *Store) UserRole(ctx context.Context, email string) (string, error) {
	var user struct {
		Role string `bson:"role"`
	}
	if err := s.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return "", err
	}
	return user.Role, nil
}
