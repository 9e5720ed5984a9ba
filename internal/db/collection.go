package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
)

// BikeCollection defines the interface for bike catalog operations
type BikeCollection interface {
	InsertBike(ctx context.Context, bike *models.Bike) error
	FindBikeByID(ctx context.Context, id primitive.ObjectID) (*models.Bike, error)
	FindBikes(ctx context.Context, filter models.BikeFilter) ([]models.Bike, error)
	UpdateBike(ctx context.Context, bike *models.Bike) error
	DeleteBike(ctx context.Context, id primitive.ObjectID) error
}

// CustomerCollection defines the interface for customer operations
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomerByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	// FindCustomers matches search case-insensitively against name and phone.
	FindCustomers(ctx context.Context, search string) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id primitive.ObjectID) error
}

// AreaCollection defines the interface for pickup area operations
type AreaCollection interface {
	InsertArea(ctx context.Context, area *models.Area) error
	FindAreaByID(ctx context.Context, id primitive.ObjectID) (*models.Area, error)
	FindAreas(ctx context.Context, activeOnly bool) ([]models.Area, error)
	UpdateArea(ctx context.Context, area *models.Area) error
	DeleteArea(ctx context.Context, id primitive.ObjectID) error
}

// BookingCollection defines the interface for booking persistence.
// Overlap checks are only authoritative while the caller holds the bike lock.
type BookingCollection interface {
	// InsertBooking returns ErrDuplicateKey when the payment order id is already used.
	InsertBooking(ctx context.Context, booking *models.Booking) error
	FindBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	FindBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	// FindOverlapping returns the earliest non-cancelled booking of bikeID intersecting [start, end).
	FindOverlapping(ctx context.Context, bikeID primitive.ObjectID, start, end time.Time, exclude primitive.ObjectID) (*models.Booking, error)
	FindBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	CountBookings(ctx context.Context, filter models.BookingFilter) (int64, error)
	UpdateBooking(ctx context.Context, id primitive.ObjectID, changes models.BookingChanges) (*models.Booking, error)
	// TransitionBooking sets status to `to` only if it is currently `from`.
	TransitionBooking(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus, byAdmin bool) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
}

// PaymentOrderCollection defines the interface for payment order records
type PaymentOrderCollection interface {
	InsertPaymentOrder(ctx context.Context, order *models.PaymentOrder) error
	FindPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	// TransitionPaymentOrder moves the order to `to` if its status is one of `from`.
	TransitionPaymentOrder(ctx context.Context, orderID string, from []models.PaymentOrderStatus, to models.PaymentOrderStatus, changes models.PaymentOrderChanges) (*models.PaymentOrder, error)
	UpdatePaymentOrder(ctx context.Context, orderID string, changes models.PaymentOrderChanges) (*models.PaymentOrder, error)
}

// RentalRequestCollection defines the interface for contact form leads
type RentalRequestCollection interface {
	InsertRentalRequest(ctx context.Context, req *models.RentalRequest) error
	FindRentalRequests(ctx context.Context) ([]models.RentalRequest, error)
	UpdateRentalRequestStatus(ctx context.Context, id primitive.ObjectID, status models.RentalRequestStatus) (*models.RentalRequest, error)
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// Store groups the collections used by the services.
type Store struct {
	Bikes          BikeCollection
	Customers      CustomerCollection
	Areas          AreaCollection
	Bookings       BookingCollection
	PaymentOrders  PaymentOrderCollection
	RentalRequests RentalRequestCollection
	Users          UserCollection
}
