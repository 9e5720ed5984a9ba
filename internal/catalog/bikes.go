// Package catalog manages the reference data bookings point at: bikes,
// customers, pickup areas and the contact form leads.
package catalog

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
)

// BikeService manages the fleet.
type BikeService struct {
	bikes  db.BikeCollection
	areas  db.AreaCollection
	logger *logrus.Logger
}

// NewBikeService returns the fleet catalog service.
func NewBikeService(store *db.Store, logger *logrus.Logger) *BikeService {
	return &BikeService{bikes: store.Bikes, areas: store.Areas, logger: orDefault(logger)}
}

// Create adds a bike. Number plates are unique.
func (s *BikeService) Create(ctx context.Context, bike *models.Bike) (*models.Bike, error) {
	bike.Normalize()
	if err := bike.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkArea(ctx, bike); err != nil {
		return nil, err
	}
	if err := s.bikes.InsertBike(ctx, bike); err != nil {
		return nil, writeErr("insert bike", err, "a bike with number plate "+bike.NumberPlate+" already exists")
	}
	s.logger.WithFields(logrus.Fields{"bike_id": bike.ID.Hex(), "plate": bike.NumberPlate}).Info("bike created")
	return bike, nil
}

// List returns the fleet, optionally filtered by status and area.
func (s *BikeService) List(ctx context.Context, status, areaID string) ([]models.Bike, error) {
	var filter models.BikeFilter
	if status != "" {
		filter.Status = models.BikeStatus(status)
		if !models.IsValidBikeStatus(filter.Status) {
			return nil, apperror.Validation("status", "status must be available, booked or maintenance")
		}
	}
	if areaID != "" {
		id, err := models.ParseID("area_id", areaID)
		if err != nil {
			return nil, err
		}
		filter.AreaID = &id
	}
	bikes, err := s.bikes.FindBikes(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("list bikes", err)
	}
	return bikes, nil
}

// Get returns one bike.
func (s *BikeService) Get(ctx context.Context, id string) (*models.Bike, error) {
	oid, err := models.ParseID("bike_id", id)
	if err != nil {
		return nil, err
	}
	bike, err := s.bikes.FindBikeByID(ctx, oid)
	if err != nil {
		return nil, lookupErr("bike", id, err)
	}
	return bike, nil
}

// Update replaces the editable fields of a bike.
func (s *BikeService) Update(ctx context.Context, id string, in *models.Bike) (*models.Bike, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = current.ID
	in.CreatedAt = current.CreatedAt
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkArea(ctx, in); err != nil {
		return nil, err
	}
	if err := s.bikes.UpdateBike(ctx, in); err != nil {
		return nil, writeErr("update bike", err, "a bike with number plate "+in.NumberPlate+" already exists")
	}
	s.logger.WithField("bike_id", id).Info("bike updated")
	return in, nil
}

// Delete removes a bike from the catalog.
func (s *BikeService) Delete(ctx context.Context, id string) error {
	oid, err := models.ParseID("bike_id", id)
	if err != nil {
		return err
	}
	if err := s.bikes.DeleteBike(ctx, oid); err != nil {
		return lookupErr("bike", id, err)
	}
	s.logger.WithField("bike_id", id).Warn("bike deleted")
	return nil
}

func (s *BikeService) checkArea(ctx context.Context, bike *models.Bike) error {
	if bike.AreaID == nil {
		return nil
	}
	if _, err := s.areas.FindAreaByID(ctx, *bike.AreaID); err != nil {
		return lookupErr("area", bike.AreaID.Hex(), err)
	}
	return nil
}

func lookupErr(entity, id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperror.NotFound(entity, id)
	}
	return apperror.Persistence("find "+entity, err)
}

func writeErr(op string, err error, duplicate string) error {
	switch {
	case errors.Is(err, db.ErrDuplicateKey):
		return apperror.Conflict(duplicate)
	case errors.Is(err, db.ErrNotFound):
		return &apperror.Error{Kind: apperror.KindNotFound, Message: "record no longer exists"}
	default:
		return apperror.Persistence(op, err)
	}
}

func orDefault(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
