package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Link roles. An apartment always has at least one owner; residents can
// open the door but cannot change the apartment itself.
const (
	RoleOwner    = "owner"
	RoleResident = "resident"
)

// UserApartment holds the structure for the userapartments collection in
// mongo, the many-to-many link between users and apartments. The account
// service writes these rows; the doorbell protocol only reads them to
// answer "who gets notified" and "may this user open".
type UserApartment struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	ApartmentID primitive.ObjectID `json:"apartmentId" bson:"apartmentId"`
	Role        string             `json:"role" bson:"role"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
