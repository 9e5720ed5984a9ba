package memdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBikes_UniquePlate(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Bikes.InsertBike(ctx, &models.Bike{NumberPlate: "GA07AB1234", Status: models.BikeAvailable}))
	err := store.Bikes.InsertBike(ctx, &models.Bike{NumberPlate: "GA07AB1234"})
	assert.ErrorIs(t, err, db.ErrDuplicateKey)

	bikes, err := store.Bikes.FindBikes(ctx, models.BikeFilter{Status: models.BikeMaintenance})
	require.NoError(t, err)
	assert.Empty(t, bikes)
}

func TestBookings_OverlapRules(t *testing.T) {
	store := New()
	ctx := context.Background()
	bike := primitive.NewObjectID()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	live := &models.Booking{BikeID: bike, Start: start, End: start.Add(2 * time.Hour), Status: models.BookingConfirmed}
	require.NoError(t, store.Bookings.InsertBooking(ctx, live))
	cancelled := &models.Booking{BikeID: bike, Start: start.Add(3 * time.Hour), End: start.Add(4 * time.Hour), Status: models.BookingCancelled}
	require.NoError(t, store.Bookings.InsertBooking(ctx, cancelled))

	found, err := store.Bookings.FindOverlapping(ctx, bike, start.Add(time.Hour), start.Add(5*time.Hour), primitive.NilObjectID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, found.ID)

	_, err = store.Bookings.FindOverlapping(ctx, bike, start.Add(2*time.Hour), start.Add(5*time.Hour), primitive.NilObjectID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = store.Bookings.FindOverlapping(ctx, bike, start, start.Add(time.Hour), live.ID)
	assert.ErrorIs(t, err, db.ErrNotFound, "excluded booking")

	_, err = store.Bookings.FindOverlapping(ctx, primitive.NewObjectID(), start, start.Add(time.Hour), primitive.NilObjectID)
	assert.ErrorIs(t, err, db.ErrNotFound, "other bike")
}

func TestBookings_UniqueOrderAndTransition(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Bookings.InsertBooking(ctx, &models.Booking{Status: models.BookingPending}))
	require.NoError(t, store.Bookings.InsertBooking(ctx, &models.Booking{Status: models.BookingPending}))

	paid := &models.Booking{Status: models.BookingConfirmed, PaymentOrderID: "bike_1"}
	require.NoError(t, store.Bookings.InsertBooking(ctx, paid))
	assert.ErrorIs(t, store.Bookings.InsertBooking(ctx, &models.Booking{PaymentOrderID: "bike_1"}), db.ErrDuplicateKey)

	_, err := store.Bookings.TransitionBooking(ctx, paid.ID, models.BookingPending, models.BookingCancelled, true)
	assert.ErrorIs(t, err, db.ErrNotFound)

	b, err := store.Bookings.TransitionBooking(ctx, paid.ID, models.BookingConfirmed, models.BookingActive, false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, b.Status)
	assert.False(t, b.UpdatedByAdmin)

	n, err := store.Bookings.CountBookings(ctx, models.BookingFilter{Status: models.BookingPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBookings_UpdateWhileIn(t *testing.T) {
	store := New()
	ctx := context.Background()

	b := &models.Booking{Status: models.BookingCompleted}
	require.NoError(t, store.Bookings.InsertBooking(ctx, b))

	flag := true
	_, err := store.Bookings.UpdateBooking(ctx, b.ID, models.BookingChanges{Overdue: &flag, WhileIn: []models.BookingStatus{models.BookingActive}})
	assert.ErrorIs(t, err, db.ErrNotFound)

	got, err := store.Bookings.UpdateBooking(ctx, b.ID, models.BookingChanges{Overdue: &flag})
	require.NoError(t, err)
	assert.True(t, got.Overdue, "unguarded updates still apply")
}

func TestBookings_ReturnsCopies(t *testing.T) {
	store := New()
	ctx := context.Background()

	b := &models.Booking{Status: models.BookingPending, Notes: "helmet"}
	require.NoError(t, store.Bookings.InsertBooking(ctx, b))
	b.Notes = "changed after insert"

	got, err := store.Bookings.FindBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "helmet", got.Notes)
	got.Status = models.BookingCancelled

	again, err := store.Bookings.FindBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, again.Status)
}

func TestPaymentOrders_Transition(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.PaymentOrders.InsertPaymentOrder(ctx, &models.PaymentOrder{OrderID: "bike_1", Status: models.OrderCreated}))
	assert.ErrorIs(t, store.PaymentOrders.InsertPaymentOrder(ctx, &models.PaymentOrder{OrderID: "bike_1"}), db.ErrDuplicateKey)

	from := []models.PaymentOrderStatus{models.OrderCreated, models.OrderAwaitingConfirmation}
	status := "PAID"
	o, err := store.PaymentOrders.TransitionPaymentOrder(ctx, "bike_1", from, models.OrderPaid, models.PaymentOrderChanges{ProviderStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, o.Status)
	assert.Equal(t, "PAID", o.ProviderStatus)

	_, err = store.PaymentOrders.TransitionPaymentOrder(ctx, "bike_1", from, models.OrderPaid, models.PaymentOrderChanges{})
	assert.ErrorIs(t, err, db.ErrNotFound, "second settle loses")

	refund := true
	o, err = store.PaymentOrders.UpdatePaymentOrder(ctx, "bike_1", models.PaymentOrderChanges{NeedsRefund: &refund})
	require.NoError(t, err)
	assert.True(t, o.NeedsRefund)
	assert.Equal(t, models.OrderPaid, o.Status)
}

func TestCustomers_Search(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Customers.InsertCustomer(ctx, &models.Customer{Name: "Ravi Naik", Phone: "9876543210"}))
	require.NoError(t, store.Customers.InsertCustomer(ctx, &models.Customer{Name: "Asha", Phone: "9123456780"}))

	found, err := store.Customers.FindCustomers(ctx, "ravi")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ravi Naik", found[0].Name)

	found, err = store.Customers.FindCustomers(ctx, "91234")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = store.Customers.FindCustomers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestUsers(t *testing.T) {
	store := New()
	ctx := context.Background()

	u := &models.User{Email: "Desk@Rental.test", Role: models.RoleStaff}
	require.NoError(t, store.Users.InsertUser(ctx, u))
	assert.ErrorIs(t, store.Users.InsertUser(ctx, &models.User{Email: "desk@rental.test"}), db.ErrDuplicateKey)

	got, err := store.Users.FindUserByEmail(ctx, "DESK@rental.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.Users.FindUserByID(ctx, "zzz")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
