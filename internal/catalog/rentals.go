package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"github.com/ukydev/scooter-rental/internal/notify"
)

// RentalService stores contact form leads and alerts staff about them.
type RentalService struct {
	requests db.RentalRequestCollection
	notifier notify.Notifier
	logger   *logrus.Logger
}

// NewRentalService returns the service for contact form leads.
func NewRentalService(store *db.Store, notifier notify.Notifier, logger *logrus.Logger) *RentalService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &RentalService{requests: store.RentalRequests, notifier: notifier, logger: orDefault(logger)}
}

// Create saves a lead. Notification failures never fail the request.
func (s *RentalService) Create(ctx context.Context, r *models.RentalRequest) (*models.RentalRequest, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.Status = models.RentalPending
	if err := s.requests.InsertRentalRequest(ctx, r); err != nil {
		return nil, apperror.Persistence("insert rental request", err)
	}
	s.logger.WithFields(logrus.Fields{"rental_request_id": r.ID.Hex(), "pickup": r.PickupLocation}).Info("rental request received")

	msg := fmt.Sprintf("Name: %s\nPhone: %s\nEmail: %s\nPickup: %s\nDate: %s\nDuration: %s\nMessage: %s",
		r.Name, r.Phone, r.Email, r.PickupLocation, r.Date, r.Duration, r.Message)
	event := notify.NewEvent(notify.EventRentalRequestCreated, r.ID.Hex(), "New Vehicle Rental Request", msg,
		map[string]string{"phone": r.Phone, "pickup_location": r.PickupLocation})
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WithError(err).Warn("rental request notification failed")
	}
	return r, nil
}

// List returns every lead, newest first.
func (s *RentalService) List(ctx context.Context) ([]models.RentalRequest, error) {
	requests, err := s.requests.FindRentalRequests(ctx)
	if err != nil {
		return nil, apperror.Persistence("list rental requests", err)
	}
	return requests, nil
}

// UpdateStatus sets the follow-up status of a lead.
func (s *RentalService) UpdateStatus(ctx context.Context, id, status string) (*models.RentalRequest, error) {
	oid, err := models.ParseID("rental_request_id", id)
	if err != nil {
		return nil, err
	}
	st := models.RentalRequestStatus(status)
	if !models.IsValidRentalStatus(st) {
		return nil, apperror.InvalidStatus(status)
	}
	r, err := s.requests.UpdateRentalRequestStatus(ctx, oid, st)
	if err != nil {
		return nil, lookupErr("rental request", id, err)
	}
	return r, nil
}
