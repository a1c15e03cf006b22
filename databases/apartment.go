package databases

// go generate: mockery --name ApartmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonasfh/picobell-api/models"
)

const apartmentCollectionName = "apartments"

// ApartmentDatabase contains the methods to use with the apartment database.
// The account service owns apartment CRUD; the doorbell protocol only reads.
type ApartmentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Apartment, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*models.Apartment, error)
	FindBySerial(ctx context.Context, serial string) (*models.Apartment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Apartment, error)
}

type apartmentDatabase struct {
	db DatabaseHelper
}

// NewApartmentDatabase initializes a new instance of apartment database with the provided db connection
func NewApartmentDatabase(db DatabaseHelper) ApartmentDatabase {
	return &apartmentDatabase{
		db: db,
	}
}

func (a *apartmentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Apartment, error) {
	apartment := &models.Apartment{}
	err := a.db.Collection(apartmentCollectionName).FindOne(ctx, filter, opts...).Decode(apartment)
	if err != nil {
		return nil, err
	}
	return apartment, nil
}

func (a *apartmentDatabase) FindByAPIKey(ctx context.Context, apiKey string) (*models.Apartment, error) {
	return a.FindOne(ctx, bson.M{"apiKey": apiKey})
}

func (a *apartmentDatabase) FindBySerial(ctx context.Context, serial string) (*models.Apartment, error) {
	return a.FindOne(ctx, bson.M{"picoSerial": serial})
}

func (a *apartmentDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Apartment, error) {
	return a.FindOne(ctx, bson.M{"_id": id})
}
