// Package memdb keeps every collection in process memory.
// It enforces the same unique keys as the Mongo indexes and backs tests and single-node demo runs.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a Store whose collections live in memory.
func New() *db.Store {
	return &db.Store{
		Bikes:          &Bikes{items: map[primitive.ObjectID]models.Bike{}},
		Customers:      &Customers{items: map[primitive.ObjectID]models.Customer{}},
		Areas:          &Areas{items: map[primitive.ObjectID]models.Area{}},
		Bookings:       &Bookings{items: map[primitive.ObjectID]models.Booking{}},
		PaymentOrders:  &PaymentOrders{items: map[string]models.PaymentOrder{}},
		RentalRequests: &RentalRequests{items: map[primitive.ObjectID]models.RentalRequest{}},
		Users:          &Users{items: map[primitive.ObjectID]models.User{}},
	}
}

func now() time.Time { return time.Now().UTC() }

// Bikes is an in-memory BikeCollection.
type Bikes struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Bike
}

func (c *Bikes) InsertBike(_ context.Context, bike *models.Bike) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.items {
		if b.NumberPlate == bike.NumberPlate {
			return db.ErrDuplicateKey
		}
	}
	bike.ID = primitive.NewObjectID()
	bike.CreatedAt = now()
	bike.UpdatedAt = bike.CreatedAt
	c.items[bike.ID] = *bike
	return nil
}

func (c *Bikes) FindBikeByID(_ context.Context, id primitive.ObjectID) (*models.Bike, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &b, nil
}

func (c *Bikes) FindBikes(_ context.Context, filter models.BikeFilter) ([]models.Bike, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.Bike{}
	for _, b := range c.items {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.AreaID != nil && (b.AreaID == nil || *b.AreaID != *filter.AreaID) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *Bikes) UpdateBike(_ context.Context, bike *models.Bike) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[bike.ID]; !ok {
		return db.ErrNotFound
	}
	for id, b := range c.items {
		if id != bike.ID && b.NumberPlate == bike.NumberPlate {
			return db.ErrDuplicateKey
		}
	}
	bike.UpdatedAt = now()
	c.items[bike.ID] = *bike
	return nil
}

func (c *Bikes) DeleteBike(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return db.ErrNotFound
	}
	delete(c.items, id)
	return nil
}

// Customers is an in-memory CustomerCollection.
type Customers struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Customer
}

func (c *Customers) InsertCustomer(_ context.Context, customer *models.Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	customer.ID = primitive.NewObjectID()
	customer.CreatedAt = now()
	customer.UpdatedAt = customer.CreatedAt
	c.items[customer.ID] = *customer
	return nil
}

func (c *Customers) FindCustomerByID(_ context.Context, id primitive.ObjectID) (*models.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cu, ok := c.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &cu, nil
}

func (c *Customers) FindCustomers(_ context.Context, search string) ([]models.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	out := []models.Customer{}
	for _, cu := range c.items {
		if needle != "" && !strings.Contains(strings.ToLower(cu.Name), needle) && !strings.Contains(cu.Phone, needle) {
			continue
		}
		out = append(out, cu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *Customers) UpdateCustomer(_ context.Context, customer *models.Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[customer.ID]; !ok {
		return db.ErrNotFound
	}
	customer.UpdatedAt = now()
	c.items[customer.ID] = *customer
	return nil
}

func (c *Customers) DeleteCustomer(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return db.ErrNotFound
	}
	delete(c.items, id)
	return nil
}

// Areas is an in-memory AreaCollection.
type Areas struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Area
}

func (c *Areas) InsertArea(_ context.Context, area *models.Area) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	area.ID = primitive.NewObjectID()
	area.CreatedAt = now()
	area.UpdatedAt = area.CreatedAt
	c.items[area.ID] = *area
	return nil
}

func (c *Areas) FindAreaByID(_ context.Context, id primitive.ObjectID) (*models.Area, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (c *Areas) FindAreas(_ context.Context, activeOnly bool) ([]models.Area, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.Area{}
	for _, a := range c.items {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Areas) UpdateArea(_ context.Context, area *models.Area) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[area.ID]; !ok {
		return db.ErrNotFound
	}
	area.UpdatedAt = now()
	c.items[area.ID] = *area
	return nil
}

func (c *Areas) DeleteArea(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return db.ErrNotFound
	}
	delete(c.items, id)
	return nil
}

// RentalRequests is an in-memory RentalRequestCollection.
type RentalRequests struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.RentalRequest
}

func (c *RentalRequests) InsertRentalRequest(_ context.Context, req *models.RentalRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	req.ID = primitive.NewObjectID()
	req.CreatedAt = now()
	req.UpdatedAt = req.CreatedAt
	c.items[req.ID] = *req
	return nil
}

func (c *RentalRequests) FindRentalRequests(_ context.Context) ([]models.RentalRequest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.RentalRequest, 0, len(c.items))
	for _, r := range c.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *RentalRequests) UpdateRentalRequestStatus(_ context.Context, id primitive.ObjectID, status models.RentalRequestStatus) (*models.RentalRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = now()
	c.items[id] = r
	return &r, nil
}

// Users is an in-memory UserCollection.
type Users struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.User
}

func (c *Users) InsertUser(_ context.Context, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range c.items {
		if u.Email == user.Email {
			return db.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true
	c.items[user.ID] = *user
	return nil
}

func (c *Users) FindUserByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, db.ErrNotFound
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.items[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (c *Users) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range c.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (c *Users) CountUsers(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.items)), nil
}

func (c *Users) DeleteUser(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return db.ErrNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[oid]; !ok {
		return db.ErrNotFound
	}
	delete(c.items, oid)
	return nil
}

func (c *Users) UpdateLastLogin(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return db.ErrNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.items[oid]
	if !ok {
		return db.ErrNotFound
	}
	t := now()
	u.LastLogin = &t
	u.UpdatedAt = t
	c.items[oid] = u
	return nil
}
