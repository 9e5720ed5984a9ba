package db

import (
	"context"
	"time"

	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPaymentOrderCollection implements PaymentOrderCollection for MongoDB
type MongoPaymentOrderCollection struct {
	Collection *mongo.Collection
}

// InsertPaymentOrder records a new order. Order ids are unique.
func (c *MongoPaymentOrderCollection) InsertPaymentOrder(ctx context.Context, order *models.PaymentOrder) error {
	if c.Collection == nil {
		return errNilCollection()
	}
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, order)
	return mapErr(err)
}

func (c *MongoPaymentOrderCollection) FindPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := c.Collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order); err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

// TransitionPaymentOrder moves an order to `to` only while it is in one of from.
func (c *MongoPaymentOrderCollection) TransitionPaymentOrder(ctx context.Context, orderID string, from []models.PaymentOrderStatus, to models.PaymentOrderStatus, changes models.PaymentOrderChanges) (*models.PaymentOrder, error) {
	set := orderChanges(changes)
	set["status"] = to
	filter := bson.M{"order_id": orderID, "status": bson.M{"$in": from}}
	return c.findOneAndSet(ctx, filter, set)
}

func (c *MongoPaymentOrderCollection) UpdatePaymentOrder(ctx context.Context, orderID string, changes models.PaymentOrderChanges) (*models.PaymentOrder, error) {
	return c.findOneAndSet(ctx, bson.M{"order_id": orderID}, orderChanges(changes))
}

func (c *MongoPaymentOrderCollection) findOneAndSet(ctx context.Context, filter, set bson.M) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&order); err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

func orderChanges(changes models.PaymentOrderChanges) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if changes.SessionID != nil {
		set["session_id"] = *changes.SessionID
	}
	if changes.ProviderStatus != nil {
		set["provider_status"] = *changes.ProviderStatus
	}
	if changes.BookingID != nil {
		set["booking_id"] = *changes.BookingID
	}
	if changes.NeedsRefund != nil {
		set["needs_refund"] = *changes.NeedsRefund
	}
	return set
}
