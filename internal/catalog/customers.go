package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
)

// CustomerService manages renters on file.
type CustomerService struct {
	customers db.CustomerCollection
	bookings  db.BookingCollection
	logger    *logrus.Logger
}

// NewCustomerService returns the service for renters on file.
func NewCustomerService(store *db.Store, logger *logrus.Logger) *CustomerService {
	return &CustomerService{customers: store.Customers, bookings: store.Bookings, logger: orDefault(logger)}
}

// Create normalizes and stores a customer.
func (s *CustomerService) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.customers.InsertCustomer(ctx, c); err != nil {
		return nil, writeErr("insert customer", err, "customer already exists")
	}
	s.logger.WithField("customer_id", c.ID.Hex()).Info("customer created")
	return c, nil
}

// List returns customers, newest first, matching search against name or phone.
func (s *CustomerService) List(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.customers.FindCustomers(ctx, search)
	if err != nil {
		return nil, apperror.Persistence("list customers", err)
	}
	return customers, nil
}

// Get returns one customer.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	oid, err := models.ParseID("customer_id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.customers.FindCustomerByID(ctx, oid)
	if err != nil {
		return nil, lookupErr("customer", id, err)
	}
	return c, nil
}

// Update replaces a customer's details. Document URLs left empty are kept.
func (s *CustomerService) Update(ctx context.Context, id string, in *models.Customer) (*models.Customer, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = current.ID
	in.CreatedAt = current.CreatedAt
	// documents are kept unless replaced
	if in.AadhaarImageURL == "" {
		in.AadhaarImageURL = current.AadhaarImageURL
	}
	if in.LicenseImageURL == "" {
		in.LicenseImageURL = current.LicenseImageURL
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.customers.UpdateCustomer(ctx, in); err != nil {
		return nil, writeErr("update customer", err, "customer already exists")
	}
	s.logger.WithField("customer_id", id).Info("customer updated")
	return in, nil
}

// Delete removes a customer that has no bookings.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	oid, err := models.ParseID("customer_id", id)
	if err != nil {
		return err
	}
	n, err := s.bookings.CountBookings(ctx, models.BookingFilter{CustomerID: &oid})
	if err != nil {
		return apperror.Persistence("count customer bookings", err)
	}
	if n > 0 {
		return apperror.Conflict(fmt.Sprintf("customer has %d booking(s) and cannot be deleted", n))
	}
	if err := s.customers.DeleteCustomer(ctx, oid); err != nil {
		return lookupErr("customer", id, err)
	}
	s.logger.WithField("customer_id", id).Warn("customer deleted")
	return nil
}
