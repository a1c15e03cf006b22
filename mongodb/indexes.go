// Package mongodb holds the schema-level setup the query paths rely on.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexModels returns the indexes per collection. The doorbellevents index
// covers the latest-valid-event lookup; the unique indexes back the key and
// link semantics the handlers assume.
func IndexModels() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		"doorbellevents": {
			{Keys: bson.D{
				{Key: "picoSerial", Value: 1},
				{Key: "openedAt", Value: 1},
				{Key: "createdAt", Value: -1},
			}},
		},
		"apartments": {
			{Keys: bson.D{{Key: "apiKey", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "picoSerial", Value: 1}}, Options: unique},
		},
		"userapartments": {
			{Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "apartmentId", Value: 1},
			}, Options: unique},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"apilogs": {
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the indexes on startup. CreateMany is idempotent
// for indexes that already exist with the same definition.
func EnsureIndexes(ctx context.Context, uri, dbName string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect for index setup: %w", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	for collection, models := range IndexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
