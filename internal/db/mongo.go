package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	BikesCollection          = "bikes"
	CustomersCollection      = "customers"
	AreasCollection          = "areas"
	BookingsCollection       = "bookings"
	PaymentOrdersCollection  = "payment_orders"
	RentalRequestsCollection = "rental_requests"
	UsersCollection          = "users"
	BikeLocksCollection      = "bike_locks"
)

const defaultMongoURI = "mongodb://localhost:27017"

// ConnectMongo connects to MongoDB and pings it.
func ConnectMongo(uri string) (*mongo.Client, error) {
	if uri == "" {
		uri = defaultMongoURI
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// NewMongoStore wires every collection of database into a Store.
func NewMongoStore(database *mongo.Database) *Store {
	return &Store{
		Bikes:          &MongoBikeCollection{Collection: database.Collection(BikesCollection)},
		Customers:      &MongoCustomerCollection{Collection: database.Collection(CustomersCollection)},
		Areas:          &MongoAreaCollection{Collection: database.Collection(AreasCollection)},
		Bookings:       &MongoBookingCollection{Collection: database.Collection(BookingsCollection)},
		PaymentOrders:  &MongoPaymentOrderCollection{Collection: database.Collection(PaymentOrdersCollection)},
		RentalRequests: &MongoRentalRequestCollection{Collection: database.Collection(RentalRequestsCollection)},
		Users:          &MongoUserCollection{Collection: database.Collection(UsersCollection)},
	}
}

// EnsureIndexes creates the indexes the services rely on for uniqueness.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		BikesCollection: {
			{Keys: bson.D{{Key: "number_plate", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "area_id", Value: 1}}},
		},
		CustomersCollection: {
			{Keys: bson.D{{Key: "phone", Value: 1}}},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: "bike_id", Value: 1}, {Key: "start_datetime", Value: 1}, {Key: "end_datetime", Value: 1}}},
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "start_datetime", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_datetime", Value: 1}}},
			{
				Keys: bson.D{{Key: "payment_order_id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"payment_order_id": bson.M{"$type": "string"}}),
			},
		},
		PaymentOrdersCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		BikeLocksCollection: {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, models := range specs {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// mapErr translates driver errors into package sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}

func errNilCollection() error {
	return fmt.Errorf("mongo collection is nil")
}
