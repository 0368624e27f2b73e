package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the lookup shape for the externally owned user subsystem.
// Orders only ever read it to build snapshots.
type User struct {
	Id           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Email        string             `bson:"email" json:"email,omitempty"`
	ProfileImage string             `bson:"profileImage" json:"profileImage,omitempty"`
	Role         string             `bson:"role" json:"role" validate:"required,oneof=Customer Farmer Retailer"`
}
