package models

import (
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RentalRequestStatus is the follow-up state of a contact form lead.
type RentalRequestStatus string

const (
	RentalPending   RentalRequestStatus = "pending"
	RentalConfirmed RentalRequestStatus = "confirmed"
	RentalCancelled RentalRequestStatus = "cancelled"
)

func IsValidRentalStatus(s RentalRequestStatus) bool {
	switch s {
	case RentalPending, RentalConfirmed, RentalCancelled:
		return true
	default:
		return false
	}
}

// RentalRequest is a lead submitted from the public contact form.
type RentalRequest struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name" binding:"required"`
	Phone          string              `bson:"phone" json:"phone" binding:"required"`
	Email          string              `bson:"email,omitempty" json:"email,omitempty" binding:"omitempty,email"`
	PickupLocation string              `bson:"pickup_location" json:"pickup_location" binding:"required"`
	Date           string              `bson:"date" json:"date" binding:"required"`
	Duration       string              `bson:"duration" json:"duration" binding:"required"`
	Message        string              `bson:"message,omitempty" json:"message,omitempty"`
	Status         RentalRequestStatus `bson:"status" json:"status"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// Validate trims the contact details and rejects blank ones.
func (r *RentalRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.PickupLocation = strings.TrimSpace(r.PickupLocation)
	switch {
	case r.Name == "":
		return apperror.Validation("name", "name is required")
	case r.Phone == "":
		return apperror.Validation("phone", "phone is required")
	case r.PickupLocation == "":
		return apperror.Validation("pickup_location", "pickup location is required")
	case strings.TrimSpace(r.Date) == "":
		return apperror.Validation("date", "date is required")
	case strings.TrimSpace(r.Duration) == "":
		return apperror.Validation("duration", "duration is required")
	}
	return nil
}
