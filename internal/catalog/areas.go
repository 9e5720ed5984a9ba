package catalog

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
)

// AreaService manages pickup areas.
type AreaService struct {
	areas  db.AreaCollection
	logger *logrus.Logger
}

// NewAreaService returns the service for pickup areas.
func NewAreaService(store *db.Store, logger *logrus.Logger) *AreaService {
	return &AreaService{areas: store.Areas, logger: orDefault(logger)}
}

// Create stores a new area.
func (s *AreaService) Create(ctx context.Context, a *models.Area) (*models.Area, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.areas.InsertArea(ctx, a); err != nil {
		return nil, writeErr("insert area", err, "area already exists")
	}
	s.logger.WithFields(logrus.Fields{"area_id": a.ID.Hex(), "name": a.Name}).Info("area created")
	return a, nil
}

// List returns areas by name. Public callers only see active ones.
func (s *AreaService) List(ctx context.Context, activeOnly bool) ([]models.Area, error) {
	areas, err := s.areas.FindAreas(ctx, activeOnly)
	if err != nil {
		return nil, apperror.Persistence("list areas", err)
	}
	return areas, nil
}

// Update replaces the editable fields of an area.
func (s *AreaService) Update(ctx context.Context, id string, in *models.Area) (*models.Area, error) {
	oid, err := models.ParseID("area_id", id)
	if err != nil {
		return nil, err
	}
	current, err := s.areas.FindAreaByID(ctx, oid)
	if err != nil {
		return nil, lookupErr("area", id, err)
	}
	in.ID = current.ID
	in.CreatedAt = current.CreatedAt
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.areas.UpdateArea(ctx, in); err != nil {
		return nil, writeErr("update area", err, "area already exists")
	}
	return in, nil
}

// Delete removes an area.
func (s *AreaService) Delete(ctx context.Context, id string) error {
	oid, err := models.ParseID("area_id", id)
	if err != nil {
		return err
	}
	if err := s.areas.DeleteArea(ctx, oid); err != nil {
		return lookupErr("area", id, err)
	}
	s.logger.WithField("area_id", id).Warn("area deleted")
	return nil
}
