package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/databases/mocks"
)

func TestUserApartmentDatabase_HasLink(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	userID := primitive.NewObjectID()
	apartmentID := primitive.NewObjectID()

	collectionHelper.(*mocks.CollectionHelper).On("CountDocuments", mock.Anything, bson.M{
		"userId":      userID,
		"apartmentId": apartmentID,
	}).Return(int64(1), nil)
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "userapartments").Return(collectionHelper)

	linkDB := databases.NewUserApartmentDatabase(dbHelper)

	linked, err := linkDB.HasLink(context.Background(), userID, apartmentID)
	assert.NoError(t, err)
	assert.True(t, linked)
}

func TestUserApartmentDatabase_HasLinkAbsent(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "userapartments").Return(collectionHelper)

	linkDB := databases.NewUserApartmentDatabase(dbHelper)

	linked, err := linkDB.HasLink(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.NoError(t, err)
	assert.False(t, linked)
}

func TestUserApartmentDatabase_HasLinkError(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errors.New("mocked-error"))
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "userapartments").Return(collectionHelper)

	linkDB := databases.NewUserApartmentDatabase(dbHelper)

	linked, err := linkDB.HasLink(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.Error(t, err)
	assert.False(t, linked)
}
