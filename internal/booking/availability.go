package booking

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"github.com/ukydev/scooter-rental/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reasons reported when a window is not available.
const (
	ReasonInvalidWindow = "invalid_window"
	ReasonConflict      = "conflict"
)

// Availability is the answer to "can this bike be rented for this window".
type Availability struct {
	Available bool             `json:"available"`
	Reason    string           `json:"reason,omitempty"`
	Conflict  *apperror.Window `json:"conflict,omitempty"`
	Quote     *pricing.Quote   `json:"quote,omitempty"`
}

// Checker answers availability questions. Its answer is advisory; writes
// re-check under the bike lock.
type Checker struct {
	bookings db.BookingCollection
	bikes    db.BikeCollection
}

// NewChecker returns a Checker over the booking and bike stores.
func NewChecker(bookings db.BookingCollection, bikes db.BikeCollection) *Checker {
	return &Checker{bookings: bookings, bikes: bikes}
}

// Check reports whether bikeID is free for [start, end).
func (c *Checker) Check(ctx context.Context, bikeID string, start, end time.Time) (*Availability, error) {
	id, err := models.ParseID("bike_id", bikeID)
	if err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, apperror.Validation("start_datetime", "start and end are required")
	}
	if !end.After(start) {
		return &Availability{Available: false, Reason: ReasonInvalidWindow}, nil
	}

	bike, err := c.bikes.FindBikeByID(ctx, id)
	if err != nil {
		return nil, lookupErr("bike", bikeID, err)
	}

	conflict, err := c.findConflict(ctx, id, start, end, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &Availability{
			Available: false,
			Reason:    ReasonConflict,
			Conflict:  &apperror.Window{Start: conflict.Start, End: conflict.End},
		}, nil
	}

	quote := pricing.Calculate(bike.Rates(), start, end)
	return &Availability{Available: true, Quote: &quote}, nil
}

// findConflict returns the first live booking overlapping the window, or nil.
func (c *Checker) findConflict(ctx context.Context, bikeID primitive.ObjectID, start, end time.Time, exclude primitive.ObjectID) (*models.Booking, error) {
	conflict, err := c.bookings.FindOverlapping(ctx, bikeID, start, end, exclude)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Persistence("find overlapping bookings", err)
	}
	return conflict, nil
}

// lookupErr maps a storage lookup failure for entity into an apperror.
func lookupErr(entity, id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperror.NotFound(entity, id)
	}
	return apperror.Persistence("find "+entity, err)
}
