package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens the MongoDB client and verifies the connection with a
// ping before returning it.
func Connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Error().Err(err).Msg("failed to ping MongoDB")
		return nil, err
	}

	log.Info().Msg("database connection established")
	return client, nil
}

// Collections bundles the handles every store needs. One place to keep
// the collection names so they match the legacy data.
type Collections struct {
	Products   *mongo.Collection
	Users      *mongo.Collection
	PriceLists *mongo.Collection
	Orders     *mongo.Collection
}

func NewCollections(client *mongo.Client, dbName string) *Collections {
	db := client.Database(dbName)
	return &Collections{
		Products:   db.Collection("products"),
		Users:      db.Collection("users"),
		PriceLists: db.Collection("pricelists"),
		Orders:     db.Collection("orders"),
	}
}
