package databases

// go generate: mockery --name DeviceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonasfh/picobell-api/models"
)

const deviceCollectionName = "devices"

// DeviceDatabase contains the read-only methods for the devices collection,
// the push-addressable clients owned by users. Registration and token
// rotation happen in the account service.
type DeviceDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Device, error)
	FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Device, error)
}

type deviceDatabase struct {
	db DatabaseHelper
}

// NewDeviceDatabase initializes a new instance of device database with the provided db connection
func NewDeviceDatabase(db DatabaseHelper) DeviceDatabase {
	return &deviceDatabase{
		db: db,
	}
}

func (d *deviceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Device, error) {
	var devices []models.Device
	cur := d.db.Collection(deviceCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&devices)
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (d *deviceDatabase) FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Device, error) {
	return d.Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
}
