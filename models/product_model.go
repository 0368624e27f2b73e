package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is the lookup shape for the externally owned catalog subsystem.
// Seller references the user record that listed the product.
type Product struct {
	ID          primitive.ObjectID `json:"productId,omitempty" bson:"_id,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Description string             `bson:"description" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Image       string             `bson:"image" json:"image,omitempty"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller" validate:"required"`
	SellerType  string             `bson:"sellerType" json:"sellerType" validate:"required,oneof=Farmer Retailer"`
}
