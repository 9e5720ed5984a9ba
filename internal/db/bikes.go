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

// MongoBikeCollection implements BikeCollection for MongoDB
type MongoBikeCollection struct {
	Collection *mongo.Collection
}

// InsertBike inserts a bike and sets its ID.
func (c *MongoBikeCollection) InsertBike(ctx context.Context, bike *models.Bike) error {
	if c.Collection == nil {
		return errNilCollection()
	}
	now := time.Now().UTC()
	bike.ID = primitive.NewObjectID()
	bike.CreatedAt = now
	bike.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, bike)
	return mapErr(err)
}

// FindBikeByID finds a bike by id.
func (c *MongoBikeCollection) FindBikeByID(ctx context.Context, id primitive.ObjectID) (*models.Bike, error) {
	var bike models.Bike
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bike); err != nil {
		return nil, mapErr(err)
	}
	return &bike, nil
}

// FindBikes lists bikes, newest first.
func (c *MongoBikeCollection) FindBikes(ctx context.Context, filter models.BikeFilter) ([]models.Bike, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AreaID != nil {
		query["area_id"] = *filter.AreaID
	}

	cursor, err := c.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bikes := []models.Bike{}
	if err := cursor.All(ctx, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

// UpdateBike replaces the stored bike.
func (c *MongoBikeCollection) UpdateBike(ctx context.Context, bike *models.Bike) error {
	bike.UpdatedAt = time.Now().UTC()
	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": bike.ID}, bike)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBike deletes a bike from the database.
func (c *MongoBikeCollection) DeleteBike(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
