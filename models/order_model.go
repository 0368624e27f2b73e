package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus tracks fulfillment, driven by seller actions.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderAccepted  OrderStatus = "Accepted"
	OrderRejected  OrderStatus = "Rejected"
	OrderCompleted OrderStatus = "Completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderRejected, OrderCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further fulfillment transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderRejected
}

// PaymentStatus tracks payment, driven by webhook reconciliation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// BuyerSnapshot is the purchaser's identity copied onto the order at
// creation time. It intentionally diverges from the live user record so
// historical orders stay accurate.
type BuyerSnapshot struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	ProfileImage string             `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	Role         string             `json:"role" bson:"role"` // Customer or Farmer
}

// SellerSnapshot is the product owner's identity at order time.
type SellerSnapshot struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Role string             `json:"role" bson:"role"` // Farmer or Retailer
}

// ProductSnapshot is the purchased item at order time, seller included.
type ProductSnapshot struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Image  string             `json:"image,omitempty" bson:"image,omitempty"`
	Seller SellerSnapshot     `json:"seller" bson:"seller"`
}

// Order is a single-product purchase record. OrderID is the external
// identifier used by every endpoint; the Mongo _id stays internal.
type Order struct {
	ID             primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	OrderID        string             `json:"orderId" bson:"orderId"`
	Buyer          BuyerSnapshot      `json:"buyer" bson:"buyer"`
	Product        ProductSnapshot    `json:"product" bson:"product"`
	PaymentID      string             `json:"paymentId" bson:"paymentId"`
	PaymentStatus  PaymentStatus      `json:"paymentStatus" bson:"paymentStatus"`
	SubTotalAmount float64            `json:"subTotalAmount" bson:"subTotalAmount"`
	TotalAmount    float64            `json:"totalAmount" bson:"totalAmount"`
	InvoiceReceipt string             `json:"invoiceReceipt,omitempty" bson:"invoiceReceipt,omitempty"`
	OrderStatus    OrderStatus        `json:"orderStatus" bson:"orderStatus"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
