package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentOrderStatus tracks one payment attempt with the provider.
type PaymentOrderStatus string

const (
	OrderCreated              PaymentOrderStatus = "order_created"
	OrderAwaitingConfirmation PaymentOrderStatus = "awaiting_confirmation"
	OrderPaid                 PaymentOrderStatus = "paid"
	OrderFailed               PaymentOrderStatus = "failed"
)

// BookingContext describes the booking a payment is meant to create.
type BookingContext struct {
	BikeID     primitive.ObjectID `bson:"bike_id" json:"bike_id"`
	CustomerID primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	Start      time.Time          `bson:"start_datetime" json:"start_datetime"`
	End        time.Time          `bson:"end_datetime" json:"end_datetime"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PaymentOrder is the local record of an order created with the payment provider.
type PaymentOrder struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderID        string              `bson:"order_id" json:"order_id"`
	Amount         float64             `bson:"amount" json:"amount"`
	Currency       string              `bson:"currency" json:"currency"`
	CustomerName   string              `bson:"customer_name" json:"customer_name"`
	CustomerPhone  string              `bson:"customer_phone" json:"customer_phone"`
	CustomerEmail  string              `bson:"customer_email,omitempty" json:"customer_email,omitempty"`
	SessionID      string              `bson:"session_id,omitempty" json:"-"`
	Status         PaymentOrderStatus  `bson:"status" json:"status"`
	ProviderStatus string              `bson:"provider_status,omitempty" json:"provider_status,omitempty"`
	Booking        *BookingContext     `bson:"booking,omitempty" json:"booking,omitempty"`
	BookingID      *primitive.ObjectID `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	NeedsRefund    bool                `bson:"needs_refund,omitempty" json:"needs_refund,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// PaymentOrderChanges is applied together with a status change.
type PaymentOrderChanges struct {
	SessionID      *string
	ProviderStatus *string
	BookingID      *primitive.ObjectID
	NeedsRefund    *bool
}
