package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DoorbellEvent holds the structure for the doorbellevents collection in
// mongo. One row is inserted per physical ring. OpenedAt is the consumption
// marker: it is set at most once, by the device poller, and only after
// OpenRequested was observed true. An event with a non-null OpenedAt (or one
// older than the ring validity window) is inert but kept for audit.
type DoorbellEvent struct {
	ID            primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	PicoSerial    string              `json:"picoSerial" bson:"picoSerial"`
	OpenRequested bool                `json:"openRequested" bson:"openRequested"`
	OpenedAt      *primitive.DateTime `json:"openedAt" bson:"openedAt"`
	CreatedAt     primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}
