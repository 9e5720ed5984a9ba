//go:build integration

package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// startMongo runs mongo:7 in a container and returns an indexed database.
func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start MongoDB container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate MongoDB container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	var client *mongo.Client
	require.Eventually(t, func() bool {
		client, err = ConnectMongo(fmt.Sprintf("mongodb://%s:%s", host, port.Port()))
		return err == nil
	}, 30*time.Second, time.Second, "MongoDB not ready for connections")
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	database := client.Database("scooter_rental_it")
	require.NoError(t, EnsureIndexes(ctx, database))
	return database
}

func TestIntegration_Mongo(t *testing.T) {
	database := startMongo(t)
	store := NewMongoStore(database)
	ctx := context.Background()

	t.Run("number plate is unique", func(t *testing.T) {
		bike := &models.Bike{Model: "Activa", CC: 110, NumberPlate: "GA07AB1234", PricePerHour: 100, Status: models.BikeAvailable}
		require.NoError(t, store.Bikes.InsertBike(ctx, bike))
		dup := &models.Bike{Model: "Dio", CC: 110, NumberPlate: "GA07AB1234", PricePerHour: 90, Status: models.BikeAvailable}
		assert.ErrorIs(t, store.Bikes.InsertBike(ctx, dup), ErrDuplicateKey)
	})

	t.Run("payment order id is unique only when set", func(t *testing.T) {
		bike := primitive.NewObjectID()
		start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 2; i++ {
			b := &models.Booking{BikeID: bike, Start: start.Add(time.Duration(i) * 24 * time.Hour), End: start.Add(time.Duration(i)*24*time.Hour + time.Hour), Status: models.BookingPending}
			require.NoError(t, store.Bookings.InsertBooking(ctx, b), "bookings without an order must not collide")
		}

		paid := &models.Booking{BikeID: bike, Start: start.Add(72 * time.Hour), End: start.Add(73 * time.Hour), Status: models.BookingConfirmed, PaymentOrderID: "bike_1"}
		require.NoError(t, store.Bookings.InsertBooking(ctx, paid))
		again := &models.Booking{BikeID: bike, Start: start.Add(96 * time.Hour), End: start.Add(97 * time.Hour), Status: models.BookingConfirmed, PaymentOrderID: "bike_1"}
		assert.ErrorIs(t, store.Bookings.InsertBooking(ctx, again), ErrDuplicateKey)

		found, err := store.Bookings.FindBookingByOrderID(ctx, "bike_1")
		require.NoError(t, err)
		assert.Equal(t, paid.ID, found.ID)
	})

	t.Run("booking times read back at millisecond precision", func(t *testing.T) {
		start := time.Date(2025, 7, 1, 9, 0, 0, 123_000_000, time.UTC)
		b := &models.Booking{BikeID: primitive.NewObjectID(), Start: start, End: start.Add(2*time.Hour + 456*time.Millisecond), TotalAmount: 300, Status: models.BookingConfirmed}
		require.NoError(t, store.Bookings.InsertBooking(ctx, b))

		got, err := store.Bookings.FindBookingByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, got.Start.Equal(b.Start), got.Start)
		assert.True(t, got.End.Equal(b.End), got.End)
		assert.Equal(t, b.TotalAmount, got.TotalAmount)
		assert.Equal(t, b.Status, got.Status)

		finer := &models.Booking{BikeID: primitive.NewObjectID(), Start: start.Add(999 * time.Microsecond), End: start.Add(time.Hour), Status: models.BookingConfirmed}
		require.NoError(t, store.Bookings.InsertBooking(ctx, finer))
		got, err = store.Bookings.FindBookingByID(ctx, finer.ID)
		require.NoError(t, err)
		assert.False(t, got.Start.Equal(finer.Start), "sub-millisecond precision is not stored")
	})

	t.Run("overdue flag only lands on active bookings", func(t *testing.T) {
		b := &models.Booking{BikeID: primitive.NewObjectID(), Start: time.Now().UTC().Add(-2 * time.Hour), End: time.Now().UTC().Add(-time.Hour), Status: models.BookingCompleted}
		require.NoError(t, store.Bookings.InsertBooking(ctx, b))

		flag := true
		_, err := store.Bookings.UpdateBooking(ctx, b.ID, models.BookingChanges{Overdue: &flag, WhileIn: []models.BookingStatus{models.BookingActive}})
		assert.ErrorIs(t, err, ErrNotFound)

		got, err := store.Bookings.FindBookingByID(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, got.Overdue)
	})

	t.Run("status compare and set has one winner", func(t *testing.T) {
		b := &models.Booking{BikeID: primitive.NewObjectID(), Start: time.Now().UTC(), End: time.Now().UTC().Add(time.Hour), Status: models.BookingPending}
		require.NoError(t, store.Bookings.InsertBooking(ctx, b))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Bookings.TransitionBooking(ctx, b.ID, models.BookingPending, models.BookingConfirmed, true); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("bike lock serializes holders", func(t *testing.T) {
		locker := &MongoBikeLocker{Collection: database.Collection(BikeLocksCollection), TTL: 5 * time.Second, Wait: 10 * time.Second}

		var inside, maxInside atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "bike-a")
				if !assert.NoError(t, err) {
					return
				}
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				inside.Add(-1)
				unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside.Load())
	})

	t.Run("bike lock times out and expired locks are taken over", func(t *testing.T) {
		coll := database.Collection(BikeLocksCollection)
		short := &MongoBikeLocker{Collection: coll, TTL: time.Minute, Wait: 200 * time.Millisecond}

		unlock, err := short.Lock(ctx, "bike-b")
		require.NoError(t, err)
		_, err = short.Lock(ctx, "bike-b")
		assert.ErrorIs(t, err, ErrLockTimeout)
		unlock()

		_, err = coll.InsertOne(ctx, bson.M{"_id": "bike-c", "owner": "crashed", "expires_at": time.Now().UTC().Add(-time.Second)})
		require.NoError(t, err)
		unlock, err = short.Lock(ctx, "bike-c")
		require.NoError(t, err)
		unlock()
	})
}
