package models

import (
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus represents where a rental is in its lifecycle
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingActive, BookingCancelled},
	BookingActive:    {BookingCompleted},
	BookingCompleted: {},
	BookingCancelled: {},
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", apperror.InvalidStatus(s)
	}
	return status, nil
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle permits moving from s to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// PaymentMethod is how the rental is paid for.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

// PaymentStatus tracks settlement of a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// BookingSource records which channel created a booking.
type BookingSource string

const (
	SourceWebsite BookingSource = "website"
	SourceAdmin   BookingSource = "admin"
)

// Booking reserves a bike for the half-open window [Start, End).
type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BikeID         primitive.ObjectID `bson:"bike_id" json:"bike_id"`
	CustomerID     primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	Start          time.Time          `bson:"start_datetime" json:"start_datetime"`
	End            time.Time          `bson:"end_datetime" json:"end_datetime"`
	TotalAmount    float64            `bson:"total_amount" json:"total_amount"`
	PaymentMethod  PaymentMethod      `bson:"payment_method" json:"payment_method"`
	PaymentStatus  PaymentStatus      `bson:"payment_status" json:"payment_status"`
	PaymentOrderID string             `bson:"payment_order_id,omitempty" json:"payment_order_id,omitempty"`
	Status         BookingStatus      `bson:"status" json:"status"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	UpdatedByAdmin bool               `bson:"updated_by_admin" json:"updated_by_admin"`
	Source         BookingSource      `bson:"booking_source" json:"booking_source"`
	Overdue        bool               `bson:"overdue,omitempty" json:"overdue,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Overlaps applies the half-open overlap rule. Cancelled bookings never overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	if b.Status == BookingCancelled {
		return false
	}
	return b.Start.Before(end) && b.End.After(start)
}

// BookingChanges is a partial update. Nil fields are left untouched.
type BookingChanges struct {
	Start          *time.Time
	End            *time.Time
	TotalAmount    *float64
	Notes          *string
	PaymentStatus  *PaymentStatus
	Overdue        *bool
	UpdatedByAdmin bool
	// WhileIn restricts the update to a booking in one of these statuses.
	// A booking in any other status is reported as db.ErrNotFound.
	WhileIn []BookingStatus
}

// BookingFilter narrows booking queries. Zero values are ignored.
type BookingFilter struct {
	Status       BookingStatus
	BikeID       *primitive.ObjectID
	CustomerID   *primitive.ObjectID
	StartsBefore *time.Time
	EndsBefore   *time.Time
	EndsAfter    *time.Time
	// NewestFirst sorts by start descending instead of ascending.
	NewestFirst bool
}

// Matches reports whether b satisfies the filter.
func (f BookingFilter) Matches(b *Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.BikeID != nil && b.BikeID != *f.BikeID {
		return false
	}
	if f.CustomerID != nil && b.CustomerID != *f.CustomerID {
		return false
	}
	if f.StartsBefore != nil && !b.Start.Before(*f.StartsBefore) && !b.Start.Equal(*f.StartsBefore) {
		return false
	}
	if f.EndsBefore != nil && !b.End.Before(*f.EndsBefore) {
		return false
	}
	if f.EndsAfter != nil && !b.End.After(*f.EndsAfter) {
		return false
	}
	return true
}

// BookingView is a booking with the bike and customer it references.
type BookingView struct {
	Booking
	Bike     *BikeSummary     `json:"bike,omitempty"`
	Customer *CustomerSummary `json:"customer,omitempty"`
}
