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

// MongoBookingCollection implements BookingCollection for MongoDB
type MongoBookingCollection struct {
	Collection *mongo.Collection
}

// InsertBooking inserts a booking and sets its ID.
func (c *MongoBookingCollection) InsertBooking(ctx context.Context, booking *models.Booking) error {
	if c.Collection == nil {
		return errNilCollection()
	}
	now := time.Now().UTC()
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, booking)
	return mapErr(err)
}

// FindBookingByID returns ErrNotFound when no booking has id.
func (c *MongoBookingCollection) FindBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

// FindBookingByOrderID finds the booking created for a payment order.
func (c *MongoBookingCollection) FindBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	return c.findOne(ctx, bson.M{"payment_order_id": orderID})
}

// FindOverlapping returns the earliest live booking intersecting [start, end).
func (c *MongoBookingCollection) FindOverlapping(ctx context.Context, bikeID primitive.ObjectID, start, end time.Time, exclude primitive.ObjectID) (*models.Booking, error) {
	query := bson.M{
		"bike_id":        bikeID,
		"status":         bson.M{"$ne": models.BookingCancelled},
		"start_datetime": bson.M{"$lt": end},
		"end_datetime":   bson.M{"$gt": start},
	}
	if !exclude.IsZero() {
		query["_id"] = bson.M{"$ne": exclude}
	}

	var booking models.Booking
	opts := options.FindOne().SetSort(bson.D{{Key: "start_datetime", Value: 1}})
	if err := c.Collection.FindOne(ctx, query, opts).Decode(&booking); err != nil {
		return nil, mapErr(err)
	}
	return &booking, nil
}

// FindBookings lists bookings matching filter.
func (c *MongoBookingCollection) FindBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	direction := 1
	if filter.NewestFirst {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_datetime", Value: direction}})

	cursor, err := c.Collection.Find(ctx, bookingQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *MongoBookingCollection) CountBookings(ctx context.Context, filter models.BookingFilter) (int64, error) {
	return c.Collection.CountDocuments(ctx, bookingQuery(filter))
}

// UpdateBooking applies the non-nil fields of changes and returns the new document.
func (c *MongoBookingCollection) UpdateBooking(ctx context.Context, id primitive.ObjectID, changes models.BookingChanges) (*models.Booking, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if changes.Start != nil {
		set["start_datetime"] = *changes.Start
	}
	if changes.End != nil {
		set["end_datetime"] = *changes.End
	}
	if changes.TotalAmount != nil {
		set["total_amount"] = *changes.TotalAmount
	}
	if changes.Notes != nil {
		set["notes"] = *changes.Notes
	}
	if changes.PaymentStatus != nil {
		set["payment_status"] = *changes.PaymentStatus
	}
	if changes.Overdue != nil {
		set["overdue"] = *changes.Overdue
	}
	if changes.UpdatedByAdmin {
		set["updated_by_admin"] = true
	}
	filter := bson.M{"_id": id}
	if len(changes.WhileIn) > 0 {
		filter["status"] = bson.M{"$in": changes.WhileIn}
	}
	return c.findOneAndSet(ctx, filter, set)
}

// TransitionBooking is a compare-and-set on the status field.
func (c *MongoBookingCollection) TransitionBooking(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus, byAdmin bool) (*models.Booking, error) {
	set := bson.M{"status": to, "updated_at": time.Now().UTC()}
	if byAdmin {
		set["updated_by_admin"] = true
	}
	return c.findOneAndSet(ctx, bson.M{"_id": id, "status": from}, set)
}

// DeleteBooking hard-deletes a booking.
func (c *MongoBookingCollection) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoBookingCollection) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	var booking models.Booking
	if err := c.Collection.FindOne(ctx, filter).Decode(&booking); err != nil {
		return nil, mapErr(err)
	}
	return &booking, nil
}

func (c *MongoBookingCollection) findOneAndSet(ctx context.Context, filter, set bson.M) (*models.Booking, error) {
	var booking models.Booking
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking); err != nil {
		return nil, mapErr(err)
	}
	return &booking, nil
}

func bookingQuery(filter models.BookingFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.BikeID != nil {
		query["bike_id"] = *filter.BikeID
	}
	if filter.CustomerID != nil {
		query["customer_id"] = *filter.CustomerID
	}
	if filter.StartsBefore != nil {
		query["start_datetime"] = bson.M{"$lte": *filter.StartsBefore}
	}
	end := bson.M{}
	if filter.EndsBefore != nil {
		end["$lt"] = *filter.EndsBefore
	}
	if filter.EndsAfter != nil {
		end["$gt"] = *filter.EndsAfter
	}
	if len(end) > 0 {
		query["end_datetime"] = end
	}
	return query
}
