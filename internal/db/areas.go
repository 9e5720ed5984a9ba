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

// MongoAreaCollection implements AreaCollection for MongoDB
type MongoAreaCollection struct {
	Collection *mongo.Collection
}

// InsertArea inserts a new area into the database.
func (c *MongoAreaCollection) InsertArea(ctx context.Context, area *models.Area) error {
	if c.Collection == nil {
		return errNilCollection()
	}
	now := time.Now().UTC()
	area.ID = primitive.NewObjectID()
	area.CreatedAt = now
	area.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, area)
	return mapErr(err)
}

// FindAreaByID finds an area by id.
func (c *MongoAreaCollection) FindAreaByID(ctx context.Context, id primitive.ObjectID) (*models.Area, error) {
	var area models.Area
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&area); err != nil {
		return nil, mapErr(err)
	}
	return &area, nil
}

// FindAreas lists areas sorted by name.
func (c *MongoAreaCollection) FindAreas(ctx context.Context, activeOnly bool) ([]models.Area, error) {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
	}

	cursor, err := c.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	areas := []models.Area{}
	if err := cursor.All(ctx, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

func (c *MongoAreaCollection) UpdateArea(ctx context.Context, area *models.Area) error {
	area.UpdatedAt = time.Now().UTC()
	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": area.ID}, area)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoAreaCollection) DeleteArea(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
