package databases

// go generate: mockery --name APILogDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonasfh/picobell-api/models"
)

const apiLogCollectionName = "apilogs"

var errNoInsert = errors.New("failed to insert document")

// APILogDatabase contains the methods to use with the request audit log.
type APILogDatabase interface {
	InsertOne(ctx context.Context, log models.APILog) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type apiLogDatabase struct {
	db DatabaseHelper
}

// NewAPILogDatabase initializes a new instance of api log database with the provided db connection
func NewAPILogDatabase(db DatabaseHelper) APILogDatabase {
	return &apiLogDatabase{
		db: db,
	}
}

func (a *apiLogDatabase) InsertOne(ctx context.Context, log models.APILog) error {
	res := a.db.Collection(apiLogCollectionName).InsertOne(ctx, log)
	if res.Decode() == nil {
		return errNoInsert
	}
	return nil
}

func (a *apiLogDatabase) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.db.Collection(apiLogCollectionName).DeleteMany(ctx, bson.M{
		"createdAt": bson.M{"$lt": primitive.NewDateTimeFromTime(cutoff)},
	})
}
