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

// MongoRentalRequestCollection implements RentalRequestCollection for MongoDB
type MongoRentalRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRentalRequest stores a new lead.
func (c *MongoRentalRequestCollection) InsertRentalRequest(ctx context.Context, req *models.RentalRequest) error {
	if c.Collection == nil {
		return errNilCollection()
	}
	now := time.Now().UTC()
	req.ID = primitive.NewObjectID()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, req)
	return mapErr(err)
}

// FindRentalRequests lists leads newest first.
func (c *MongoRentalRequestCollection) FindRentalRequests(ctx context.Context) ([]models.RentalRequest, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.RentalRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *MongoRentalRequestCollection) UpdateRentalRequestStatus(ctx context.Context, id primitive.ObjectID, status models.RentalRequestStatus) (*models.RentalRequest, error) {
	var req models.RentalRequest
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	if err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&req); err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}
