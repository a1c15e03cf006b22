package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Device holds the structure for the devices collection in mongo. A device
// is a push-addressable client (phone or tablet) owned by a user. The push
// token is opaque to us and rotates on the client side; registration and
// deletion are handled by the account service, we only read.
type Device struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Name      string             `json:"name" bson:"name"`
	Token     string             `json:"-" bson:"token"`
	Platform  string             `json:"platform" bson:"platform"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
