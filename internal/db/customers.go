package db

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCustomerCollection implements CustomerCollection for MongoDB
type MongoCustomerCollection struct {
	Collection *mongo.Collection
}

// InsertCustomer inserts a new customer into the database.
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	if c.Collection == nil {
		return errNilCollection()
	}
	now := time.Now().UTC()
	customer.ID = primitive.NewObjectID()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, customer)
	return mapErr(err)
}

// FindCustomerByID finds a customer by id.
func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	var customer models.Customer
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&customer); err != nil {
		return nil, mapErr(err)
	}
	return &customer, nil
}

// FindCustomers lists customers, newest first, optionally filtered by name or phone.
func (c *MongoCustomerCollection) FindCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	query := bson.M{}
	if s := strings.TrimSpace(search); s != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"phone": pattern},
		}
	}

	cursor, err := c.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// UpdateCustomer replaces a customer document.
func (c *MongoCustomerCollection) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": customer.ID}, customer)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCustomerCollection) DeleteCustomer(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
