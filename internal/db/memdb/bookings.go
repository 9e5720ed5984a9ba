package memdb

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookings is an in-memory BookingCollection with a unique payment_order_id.
type Bookings struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Booking
}

func (c *Bookings) InsertBooking(_ context.Context, booking *models.Booking) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if booking.PaymentOrderID != "" {
		for _, b := range c.items {
			if b.PaymentOrderID == booking.PaymentOrderID {
				return db.ErrDuplicateKey
			}
		}
	}
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = now()
	booking.UpdatedAt = booking.CreatedAt
	c.items[booking.ID] = *booking
	return nil
}

func (c *Bookings) FindBookingByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &b, nil
}

func (c *Bookings) FindBookingByOrderID(_ context.Context, orderID string) (*models.Booking, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.items {
		if orderID != "" && b.PaymentOrderID == orderID {
			return &b, nil
		}
	}
	return nil, db.ErrNotFound
}

func (c *Bookings) FindOverlapping(_ context.Context, bikeID primitive.ObjectID, start, end time.Time, exclude primitive.ObjectID) (*models.Booking, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var first *models.Booking
	for _, b := range c.items {
		if b.BikeID != bikeID || b.ID == exclude || !b.Overlaps(start, end) {
			continue
		}
		if first == nil || b.Start.Before(first.Start) {
			match := b
			first = &match
		}
	}
	if first == nil {
		return nil, db.ErrNotFound
	}
	return first, nil
}

func (c *Bookings) FindBookings(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range c.items {
		if filter.Matches(&b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.NewestFirst {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (c *Bookings) CountBookings(ctx context.Context, filter models.BookingFilter) (int64, error) {
	found, err := c.FindBookings(ctx, filter)
	return int64(len(found)), err
}

func (c *Bookings) UpdateBooking(_ context.Context, id primitive.ObjectID, changes models.BookingChanges) (*models.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[id]
	if !ok || (len(changes.WhileIn) > 0 && !slices.Contains(changes.WhileIn, b.Status)) {
		return nil, db.ErrNotFound
	}
	if changes.Start != nil {
		b.Start = *changes.Start
	}
	if changes.End != nil {
		b.End = *changes.End
	}
	if changes.TotalAmount != nil {
		b.TotalAmount = *changes.TotalAmount
	}
	if changes.Notes != nil {
		b.Notes = *changes.Notes
	}
	if changes.PaymentStatus != nil {
		b.PaymentStatus = *changes.PaymentStatus
	}
	if changes.Overdue != nil {
		b.Overdue = *changes.Overdue
	}
	if changes.UpdatedByAdmin {
		b.UpdatedByAdmin = true
	}
	b.UpdatedAt = now()
	c.items[id] = b
	return &b, nil
}

func (c *Bookings) TransitionBooking(_ context.Context, id primitive.ObjectID, from, to models.BookingStatus, byAdmin bool) (*models.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[id]
	if !ok || b.Status != from {
		return nil, db.ErrNotFound
	}
	b.Status = to
	if byAdmin {
		b.UpdatedByAdmin = true
	}
	b.UpdatedAt = now()
	c.items[id] = b
	return &b, nil
}

func (c *Bookings) DeleteBooking(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return db.ErrNotFound
	}
	delete(c.items, id)
	return nil
}

// PaymentOrders is an in-memory PaymentOrderCollection keyed by order id.
type PaymentOrders struct {
	mu    sync.RWMutex
	items map[string]models.PaymentOrder
}

func (c *PaymentOrders) InsertPaymentOrder(_ context.Context, order *models.PaymentOrder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[order.OrderID]; exists {
		return db.ErrDuplicateKey
	}
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt
	c.items[order.OrderID] = *order
	return nil
}

func (c *PaymentOrders) FindPaymentOrder(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.items[orderID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &o, nil
}

func (c *PaymentOrders) TransitionPaymentOrder(_ context.Context, orderID string, from []models.PaymentOrderStatus, to models.PaymentOrderStatus, changes models.PaymentOrderChanges) (*models.PaymentOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.items[orderID]
	if !ok {
		return nil, db.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if o.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, db.ErrNotFound
	}
	o.Status = to
	applyOrderChanges(&o, changes)
	c.items[orderID] = o
	return &o, nil
}

func (c *PaymentOrders) UpdatePaymentOrder(_ context.Context, orderID string, changes models.PaymentOrderChanges) (*models.PaymentOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.items[orderID]
	if !ok {
		return nil, db.ErrNotFound
	}
	applyOrderChanges(&o, changes)
	c.items[orderID] = o
	return &o, nil
}

func applyOrderChanges(o *models.PaymentOrder, changes models.PaymentOrderChanges) {
	if changes.SessionID != nil {
		o.SessionID = *changes.SessionID
	}
	if changes.ProviderStatus != nil {
		o.ProviderStatus = *changes.ProviderStatus
	}
	if changes.BookingID != nil {
		id := *changes.BookingID
		o.BookingID = &id
	}
	if changes.NeedsRefund != nil {
		o.NeedsRefund = *changes.NeedsRefund
	}
	o.UpdatedAt = now()
}
