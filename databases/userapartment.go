package databases

// go generate: mockery --name UserApartmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonasfh/picobell-api/models"
)

const userApartmentCollectionName = "userapartments"

// UserApartmentDatabase contains the read-only methods for the user-apartment
// link collection. HasLink is the authorization check for every
// apartment-scoped user operation.
type UserApartmentDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UserApartment, error)
	FindByApartmentID(ctx context.Context, apartmentID primitive.ObjectID) ([]models.UserApartment, error)
	HasLink(ctx context.Context, userID, apartmentID primitive.ObjectID) (bool, error)
}

type userApartmentDatabase struct {
	db DatabaseHelper
}

// NewUserApartmentDatabase initializes a new instance of user apartment database with the provided db connection
func NewUserApartmentDatabase(db DatabaseHelper) UserApartmentDatabase {
	return &userApartmentDatabase{
		db: db,
	}
}

func (u *userApartmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UserApartment, error) {
	var links []models.UserApartment
	cur := u.db.Collection(userApartmentCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&links)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (u *userApartmentDatabase) FindByApartmentID(ctx context.Context, apartmentID primitive.ObjectID) ([]models.UserApartment, error) {
	return u.Find(ctx, bson.M{"apartmentId": apartmentID})
}

func (u *userApartmentDatabase) HasLink(ctx context.Context, userID, apartmentID primitive.ObjectID) (bool, error) {
	count, err := u.db.Collection(userApartmentCollectionName).CountDocuments(ctx, bson.M{
		"userId":      userID,
		"apartmentId": apartmentID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
