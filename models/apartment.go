package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Apartment holds the structure for the apartments collection in mongo.
// The API key is the long-lived credential the physical doorbell unit
// presents on every request; it is generated once at creation and never
// serialized into API responses.
type Apartment struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Address    string             `json:"address" bson:"address"`
	PicoSerial string             `json:"picoSerial" bson:"picoSerial"`
	APIKey     string             `json:"-" bson:"apiKey"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt  primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
