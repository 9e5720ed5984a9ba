// Package booking owns the rental lifecycle: availability, creation, status
// transitions and edits of bookings.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"github.com/ukydev/scooter-rental/internal/notify"
	"github.com/ukydev/scooter-rental/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// amountTolerance absorbs float rounding when comparing rupee amounts.
const amountTolerance = 0.005

// liveStatuses are the statuses an admin edit may still touch.
var liveStatuses = []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingActive}

// CreateRequest is the input for both customer and admin creation.
// Any client supplied total is ignored.
type CreateRequest struct {
	BikeID        string               `json:"bike_id" binding:"required"`
	CustomerID    string               `json:"customer_id" binding:"required"`
	Start         time.Time            `json:"start_datetime" binding:"required"`
	End           time.Time            `json:"end_datetime" binding:"required"`
	Notes         string               `json:"notes"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash online"`
}

// PaidRequest creates the booking behind a verified payment.
type PaidRequest struct {
	OrderID    string
	Context    models.BookingContext
	AmountPaid float64
}

// DetailsRequest is an admin edit. Nil fields are kept.
type DetailsRequest struct {
	Start *time.Time `json:"start_datetime"`
	End   *time.Time `json:"end_datetime"`
	Notes *string    `json:"notes"`
}

// ListFilter narrows List.
type ListFilter struct {
	Status string
}

// Service implements the booking lifecycle
type Service struct {
	checker   *Checker
	bookings  db.BookingCollection
	bikes     db.BikeCollection
	customers db.CustomerCollection
	locker    Locker
	notifier  notify.Notifier
	logger    *logrus.Logger
}

// NewService creates a new booking service
func NewService(store *db.Store, locker Locker, notifier notify.Notifier, logger *logrus.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		checker:   NewChecker(store.Bookings, store.Bikes),
		bookings:  store.Bookings,
		bikes:     store.Bikes,
		customers: store.Customers,
		locker:    locker,
		notifier:  notifier,
		logger:    logger,
	}
}

// CheckAvailability reports whether a bike is free for the window.
func (s *Service) CheckAvailability(ctx context.Context, bikeID string, start, end time.Time) (*Availability, error) {
	return s.checker.Check(ctx, bikeID, start, end)
}

// Create books a bike from the public site. The booking starts pending and is paid in cash.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.BookingView, error) {
	switch req.PaymentMethod {
	case "", models.PaymentCash:
	case models.PaymentOnline:
		return nil, apperror.Validation("payment_method", "online bookings are created after payment is confirmed")
	default:
		return nil, apperror.Validation("payment_method", "payment method must be cash or online")
	}
	return s.create(ctx, req, models.BookingPending, models.SourceWebsite)
}

// AdminCreate books a bike from the back office, skipping pending.
func (s *Service) AdminCreate(ctx context.Context, req CreateRequest) (*models.BookingView, error) {
	if req.PaymentMethod != "" && req.PaymentMethod != models.PaymentCash && req.PaymentMethod != models.PaymentOnline {
		return nil, apperror.Validation("payment_method", "payment method must be cash or online")
	}
	return s.create(ctx, req, models.BookingConfirmed, models.SourceAdmin)
}

func (s *Service) create(ctx context.Context, req CreateRequest, status models.BookingStatus, source models.BookingSource) (*models.BookingView, error) {
	bikeID, customerID, err := validateRefs(req.BikeID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := validateWindow(storedTime(req.Start), storedTime(req.End)); err != nil {
		return nil, err
	}

	bike, err := s.bikes.FindBikeByID(ctx, bikeID)
	if err != nil {
		return nil, lookupErr("bike", req.BikeID, err)
	}
	customer, err := s.customers.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, lookupErr("customer", req.CustomerID, err)
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}

	booking := &models.Booking{
		BikeID:         bikeID,
		CustomerID:     customerID,
		Start:         storedTime(req.Start),
		End:           storedTime(req.End),
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		Status:        status,
		Notes:         strings.TrimSpace(req.Notes),
		Source:        source,
	}

	err = s.withBikeLock(ctx, bikeID, func() error {
		conflict, err := s.checker.findConflict(ctx, bikeID, booking.Start, booking.End, primitive.NilObjectID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return apperror.Overlap(conflict.Start, conflict.End)
		}
		booking.TotalAmount = pricing.Price(bike.Rates(), booking.Start, booking.End)
		if err := s.bookings.InsertBooking(ctx, booking); err != nil {
			return apperror.Persistence("insert booking", err)
		}
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			s.logger.WithFields(logrus.Fields{
				"bike_id": bikeID.Hex(),
				"start":   booking.Start,
				"end":     booking.End,
			}).Info("booking rejected, window taken")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID.Hex(),
		"bike_id":    bikeID.Hex(),
		"status":     booking.Status,
		"source":     source,
		"amount":     booking.TotalAmount,
	}).Info("booking created")

	s.emit(ctx, notify.EventBookingCreated, booking, "New bike booking",
		fmt.Sprintf("%s booked %s (%s) from %s to %s for %.2f.",
			customer.Name, bike.Model, bike.NumberPlate,
			booking.Start.Format(time.RFC1123), booking.End.Format(time.RFC1123), booking.TotalAmount))

	return &models.BookingView{Booking: *booking, Bike: bike.Summary(), Customer: customer.Summary()}, nil
}

// CreatePaid find-or-creates the booking for a verified payment order.
// It returns created=false when a booking for the order already exists.
func (s *Service) CreatePaid(ctx context.Context, req PaidRequest) (*models.BookingView, bool, error) {
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, false, apperror.Validation("order_id", "order id is required")
	}
	if req.Context.BikeID.IsZero() {
		return nil, false, apperror.Validation("bike_id", "bike is required")
	}
	if req.Context.CustomerID.IsZero() {
		return nil, false, apperror.Validation("customer_id", "customer is required")
	}
	start, end := storedTime(req.Context.Start), storedTime(req.Context.End)
	if err := validateWindow(start, end); err != nil {
		return nil, false, err
	}

	found, err := s.findByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		view, err := s.view(ctx, found)
		return view, false, err
	}

	bike, err := s.bikes.FindBikeByID(ctx, req.Context.BikeID)
	if err != nil {
		return nil, false, lookupErr("bike", req.Context.BikeID.Hex(), err)
	}
	customer, err := s.customers.FindCustomerByID(ctx, req.Context.CustomerID)
	if err != nil {
		return nil, false, lookupErr("customer", req.Context.CustomerID.Hex(), err)
	}

	booking := &models.Booking{
		BikeID:         bike.ID,
		CustomerID:     customer.ID,
		Start:          start,
		End:            end,
		PaymentMethod:  models.PaymentOnline,
		PaymentStatus:  models.PaymentPaid,
		PaymentOrderID: req.OrderID,
		Status:         models.BookingConfirmed,
		Notes:          req.Context.Notes,
		Source:         models.SourceWebsite,
	}

	var existing *models.Booking
	err = s.withBikeLock(ctx, bike.ID, func() error {
		found, err := s.findByOrder(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if found != nil {
			existing = found
			return nil
		}

		conflict, err := s.checker.findConflict(ctx, bike.ID, booking.Start, booking.End, primitive.NilObjectID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return apperror.Overlap(conflict.Start, conflict.End)
		}

		booking.TotalAmount = pricing.Price(bike.Rates(), booking.Start, booking.End)
		if req.AmountPaid+amountTolerance < booking.TotalAmount {
			return apperror.Validation("amount",
				fmt.Sprintf("paid amount %.2f is below the rental price %.2f", req.AmountPaid, booking.TotalAmount))
		}

		err = s.bookings.InsertBooking(ctx, booking)
		if errors.Is(err, db.ErrDuplicateKey) {
			// another instance won the insert
			found, ferr := s.findByOrder(ctx, req.OrderID)
			if ferr != nil {
				return ferr
			}
			if found == nil {
				return apperror.Persistence("insert paid booking", err)
			}
			existing = found
			return nil
		}
		if err != nil {
			return apperror.Persistence("insert paid booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id":   req.OrderID,
			"booking_id": existing.ID.Hex(),
		}).Info("paid booking already exists")
		return &models.BookingView{Booking: *existing, Bike: bike.Summary(), Customer: customer.Summary()}, false, nil
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   req.OrderID,
		"booking_id": booking.ID.Hex(),
		"bike_id":    bike.ID.Hex(),
		"amount":     booking.TotalAmount,
	}).Info("paid booking created")

	s.emit(ctx, notify.EventBookingPaid, booking, "New paid bike booking",
		fmt.Sprintf("%s paid %.2f online for %s (%s) from %s to %s. Order %s.",
			customer.Name, booking.TotalAmount, bike.Model, bike.NumberPlate,
			booking.Start.Format(time.RFC1123), booking.End.Format(time.RFC1123), req.OrderID))

	return &models.BookingView{Booking: *booking, Bike: bike.Summary(), Customer: customer.Summary()}, true, nil
}

// MarkPaidByOrder sets payment_status=paid on the booking that references orderID.
// It returns a NotFoundError when no booking references the order.
func (s *Service) MarkPaidByOrder(ctx context.Context, orderID string) (*models.Booking, error) {
	booking, err := s.findByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NotFound("booking", orderID)
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return booking, nil
	}
	paid := models.PaymentPaid
	updated, err := s.bookings.UpdateBooking(ctx, booking.ID, models.BookingChanges{PaymentStatus: &paid})
	if err != nil {
		return nil, lookupErr("booking", booking.ID.Hex(), err)
	}
	s.logger.WithFields(logrus.Fields{"order_id": orderID, "booking_id": booking.ID.Hex()}).Info("booking marked paid")
	return updated, nil
}

// UpdateStatus moves a booking along the lifecycle on behalf of an admin.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*models.BookingView, error) {
	target, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}
	bookingID, err := models.ParseID("booking_id", id)
	if err != nil {
		return nil, err
	}
	updated, err := s.transition(ctx, bookingID, target, true)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// Cancel flips a pending or confirmed booking to cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	bookingID, err := models.ParseID("booking_id", id)
	if err != nil {
		return err
	}
	_, err = s.transition(ctx, bookingID, models.BookingCancelled, true)
	return err
}

// Activate starts a confirmed booking. It is the hook used by the sweeper.
func (s *Service) Activate(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return s.transition(ctx, id, models.BookingActive, false)
}

// FlagOverdue marks an active booking whose window has ended.
func (s *Service) FlagOverdue(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	flag := true
	updated, err := s.bookings.UpdateBooking(ctx, id, models.BookingChanges{
		Overdue: &flag,
		WhileIn: []models.BookingStatus{models.BookingActive},
	})
	if errors.Is(err, db.ErrNotFound) {
		latest, ferr := s.bookings.FindBookingByID(ctx, id)
		if ferr != nil {
			return nil, lookupErr("booking", id.Hex(), ferr)
		}
		return nil, apperror.InvalidTransition(string(latest.Status), "overdue")
	}
	if err != nil {
		return nil, apperror.Persistence("flag booking overdue", err)
	}
	s.logger.WithFields(logrus.Fields{"booking_id": id.Hex(), "end": updated.End}).Warn("booking overdue")
	s.emit(ctx, notify.EventBookingOverdue, updated, "Rental overdue",
		fmt.Sprintf("Booking %s ended at %s and the bike has not been returned.", id.Hex(), updated.End.Format(time.RFC1123)))
	return updated, nil
}

func (s *Service) transition(ctx context.Context, id primitive.ObjectID, target models.BookingStatus, byAdmin bool) (*models.Booking, error) {
	current, err := s.bookings.FindBookingByID(ctx, id)
	if err != nil {
		return nil, lookupErr("booking", id.Hex(), err)
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, apperror.InvalidTransition(string(current.Status), string(target))
	}

	updated, err := s.bookings.TransitionBooking(ctx, id, current.Status, target, byAdmin)
	if errors.Is(err, db.ErrNotFound) {
		// lost a race with another writer, report against the fresh state
		latest, ferr := s.bookings.FindBookingByID(ctx, id)
		if ferr != nil {
			return nil, lookupErr("booking", id.Hex(), ferr)
		}
		return nil, apperror.InvalidTransition(string(latest.Status), string(target))
	}
	if err != nil {
		return nil, apperror.Persistence("update booking status", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": id.Hex(),
		"bike_id":    updated.BikeID.Hex(),
		"from":       current.Status,
		"to":         target,
		"by_admin":   byAdmin,
	}).Info("booking status changed")

	s.emit(ctx, notify.EventBookingStatusChanged, updated, "Booking status changed",
		fmt.Sprintf("Booking %s moved from %s to %s.", id.Hex(), current.Status, target))
	return updated, nil
}

// UpdateTime moves a booking to a new window and reprices it.
func (s *Service) UpdateTime(ctx context.Context, id string, start, end time.Time) (*models.BookingView, error) {
	return s.UpdateDetails(ctx, id, DetailsRequest{Start: &start, End: &end})
}

// UpdateDetails applies an admin edit. A changed window is re-checked and repriced.
func (s *Service) UpdateDetails(ctx context.Context, id string, req DetailsRequest) (*models.BookingView, error) {
	bookingID, err := models.ParseID("booking_id", id)
	if err != nil {
		return nil, err
	}
	current, err := s.bookings.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, lookupErr("booking", id, err)
	}

	changes := models.BookingChanges{UpdatedByAdmin: true}
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		changes.Notes = &notes
	}

	if current.Status.IsTerminal() {
		return nil, frozenErr(current.Status)
	}
	if req.Start == nil && req.End == nil {
		updated, err := s.updateLive(ctx, bookingID, changes)
		if err != nil {
			return nil, err
		}
		return s.view(ctx, updated)
	}

	bike, err := s.bikes.FindBikeByID(ctx, current.BikeID)
	if err != nil {
		return nil, lookupErr("bike", current.BikeID.Hex(), err)
	}

	var updated *models.Booking
	err = s.withBikeLock(ctx, current.BikeID, func() error {
		fresh, err := s.bookings.FindBookingByID(ctx, bookingID)
		if err != nil {
			return lookupErr("booking", id, err)
		}
		if fresh.Status.IsTerminal() {
			return frozenErr(fresh.Status)
		}
		start, end := fresh.Start, fresh.End
		if req.Start != nil {
			start = storedTime(*req.Start)
		}
		if req.End != nil {
			end = storedTime(*req.End)
		}
		if err := validateWindow(start, end); err != nil {
			return err
		}

		conflict, err := s.checker.findConflict(ctx, fresh.BikeID, start, end, fresh.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return apperror.Overlap(conflict.Start, conflict.End)
		}

		amount := pricing.Price(bike.Rates(), start, end)
		if fresh.PaymentStatus == models.PaymentPaid && !sameAmount(amount, fresh.TotalAmount) {
			return apperror.Validation("total_amount",
				fmt.Sprintf("booking is paid at %.2f; the new window would cost %.2f", fresh.TotalAmount, amount))
		}

		changes.Start, changes.End, changes.TotalAmount = &start, &end, &amount
		updated, err = s.updateLive(ctx, bookingID, changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"bike_id":    updated.BikeID.Hex(),
		"start":      updated.Start,
		"end":        updated.End,
		"amount":     updated.TotalAmount,
	}).Info("booking time updated")
	return s.view(ctx, updated)
}

// Delete hard-deletes a booking. Cancel is the normal path.
func (s *Service) Delete(ctx context.Context, id string) error {
	bookingID, err := models.ParseID("booking_id", id)
	if err != nil {
		return err
	}
	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		return lookupErr("booking", id, err)
	}
	s.logger.WithField("booking_id", id).Warn("booking deleted")
	return nil
}

// Get returns a booking with its bike and customer.
func (s *Service) Get(ctx context.Context, id string) (*models.BookingView, error) {
	bookingID, err := models.ParseID("booking_id", id)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, lookupErr("booking", id, err)
	}
	return s.view(ctx, booking)
}

// List returns bookings ordered by start, optionally filtered by status.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.BookingView, error) {
	var f models.BookingFilter
	if filter.Status != "" {
		status, err := models.ParseBookingStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		f.Status = status
	}
	bookings, err := s.bookings.FindBookings(ctx, f)
	if err != nil {
		return nil, apperror.Persistence("list bookings", err)
	}
	return s.views(ctx, bookings)
}

// ListByCustomer returns a customer's history, most recent first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]models.BookingView, error) {
	id, err := models.ParseID("customer_id", customerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.FindCustomerByID(ctx, id); err != nil {
		return nil, lookupErr("customer", customerID, err)
	}
	bookings, err := s.bookings.FindBookings(ctx, models.BookingFilter{CustomerID: &id, NewestFirst: true})
	if err != nil {
		return nil, apperror.Persistence("list customer bookings", err)
	}
	return s.views(ctx, bookings)
}

// DueForActivation lists confirmed bookings whose window contains now.
func (s *Service) DueForActivation(ctx context.Context, now time.Time) ([]models.Booking, error) {
	bookings, err := s.bookings.FindBookings(ctx, models.BookingFilter{
		Status:       models.BookingConfirmed,
		StartsBefore: &now,
		EndsAfter:    &now,
	})
	if err != nil {
		return nil, apperror.Persistence("list due bookings", err)
	}
	return bookings, nil
}

// PastDue lists active bookings whose window ended before now.
func (s *Service) PastDue(ctx context.Context, now time.Time) ([]models.Booking, error) {
	bookings, err := s.bookings.FindBookings(ctx, models.BookingFilter{
		Status:     models.BookingActive,
		EndsBefore: &now,
	})
	if err != nil {
		return nil, apperror.Persistence("list overdue bookings", err)
	}
	return bookings, nil
}

func (s *Service) withBikeLock(ctx context.Context, bikeID primitive.ObjectID, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, bikeID.Hex())
	if errors.Is(err, db.ErrLockTimeout) {
		return apperror.Conflict("bike is being booked by someone else, please retry")
	}
	if err != nil {
		return apperror.Persistence("lock bike", err)
	}
	defer unlock()
	return fn()
}

func (s *Service) findByOrder(ctx context.Context, orderID string) (*models.Booking, error) {
	booking, err := s.bookings.FindBookingByOrderID(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Persistence("find booking by order", err)
	}
	return booking, nil
}

func (s *Service) emit(ctx context.Context, t notify.EventType, b *models.Booking, subject, message string) {
	event := notify.NewEvent(t, b.ID.Hex(), subject, message, map[string]string{
		"bike_id":     b.BikeID.Hex(),
		"customer_id": b.CustomerID.Hex(),
		"status":      string(b.Status),
	})
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event", t).Warn("notification failed")
	}
}

func (s *Service) view(ctx context.Context, b *models.Booking) (*models.BookingView, error) {
	views, err := s.views(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views attaches bike and customer summaries. Missing references are left nil.
func (s *Service) views(ctx context.Context, bookings []models.Booking) ([]models.BookingView, error) {
	bikes := map[primitive.ObjectID]*models.BikeSummary{}
	customers := map[primitive.ObjectID]*models.CustomerSummary{}
	out := make([]models.BookingView, 0, len(bookings))

	for _, b := range bookings {
		bike, ok := bikes[b.BikeID]
		if !ok {
			found, err := s.bikes.FindBikeByID(ctx, b.BikeID)
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return nil, apperror.Persistence("find bike", err)
			}
			if found != nil {
				bike = found.Summary()
			}
			bikes[b.BikeID] = bike
		}
		customer, ok := customers[b.CustomerID]
		if !ok {
			found, err := s.customers.FindCustomerByID(ctx, b.CustomerID)
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return nil, apperror.Persistence("find customer", err)
			}
			if found != nil {
				customer = found.Summary()
			}
			customers[b.CustomerID] = customer
		}
		out = append(out, models.BookingView{Booking: b, Bike: bike, Customer: customer})
	}
	return out, nil
}

// updateLive applies an admin edit unless the booking has meanwhile been
// completed or cancelled.
func (s *Service) updateLive(ctx context.Context, id primitive.ObjectID, changes models.BookingChanges) (*models.Booking, error) {
	changes.WhileIn = liveStatuses
	updated, err := s.bookings.UpdateBooking(ctx, id, changes)
	if errors.Is(err, db.ErrNotFound) {
		latest, ferr := s.bookings.FindBookingByID(ctx, id)
		if ferr != nil {
			return nil, lookupErr("booking", id.Hex(), ferr)
		}
		return nil, frozenErr(latest.Status)
	}
	if err != nil {
		return nil, apperror.Persistence("update booking", err)
	}
	return updated, nil
}

func frozenErr(status models.BookingStatus) error {
	return apperror.Validation("status", fmt.Sprintf("cannot edit a %s booking", status))
}

// storedTime drops what a BSON datetime cannot hold, so a booking reads back
// exactly as it was priced.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func validateRefs(bikeID, customerID string) (primitive.ObjectID, primitive.ObjectID, error) {
	bike, err := models.ParseID("bike_id", bikeID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	customer, err := models.ParseID("customer_id", customerID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return bike, customer, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() {
		return apperror.Validation("start_datetime", "start is required")
	}
	if end.IsZero() {
		return apperror.Validation("end_datetime", "end is required")
	}
	if !end.After(start) {
		return apperror.Validation("end_datetime", "end must be after start")
	}
	return nil
}

func sameAmount(a, b float64) bool {
	d := a - b
	return d < amountTolerance && d > -amountTolerance
}
