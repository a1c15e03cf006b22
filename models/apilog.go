package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// APILog holds the structure for the apilogs collection in mongo. One row
// per handled request, written off the request path and pruned by the
// retention job.
type APILog struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Method     string             `json:"method" bson:"method"`
	Path       string             `json:"path" bson:"path"`
	Principal  string             `json:"principal" bson:"principal"`
	Status     int                `json:"status" bson:"status"`
	DurationMs int64              `json:"durationMs" bson:"durationMs"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
