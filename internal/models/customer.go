package models

import (
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is a renter on file. Identity documents are stored elsewhere and referenced by URL.
type Customer struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name" binding:"required"`
	Phone           string             `bson:"phone" json:"phone" binding:"required,numeric,len=10"`
	Email           string             `bson:"email,omitempty" json:"email,omitempty" binding:"omitempty,email"`
	Address         string             `bson:"address,omitempty" json:"address,omitempty"`
	IDProofType     string             `bson:"id_proof_type,omitempty" json:"id_proof_type,omitempty"`
	IDProofNumber   string             `bson:"id_proof_number,omitempty" json:"id_proof_number,omitempty"`
	AadhaarImageURL string             `bson:"aadhaar_image_url,omitempty" json:"aadhaar_image_url,omitempty"`
	LicenseImageURL string             `bson:"license_image_url,omitempty" json:"license_image_url,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Normalize trims user supplied text.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Address = strings.TrimSpace(c.Address)
}

// Validate checks the trimmed name and that at least one identity document is attached.
func (c *Customer) Validate() error {
	if c.Name == "" {
		return apperror.Validation("name", "name is required")
	}
	if c.AadhaarImageURL == "" && c.LicenseImageURL == "" {
		return apperror.Validation("id_documents", "at least one identity document is required")
	}
	return nil
}

// CustomerSummary is the denormalized customer shown next to a booking.
type CustomerSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Phone string             `json:"phone"`
	Email string             `json:"email,omitempty"`
}

func (c *Customer) Summary() *CustomerSummary {
	return &CustomerSummary{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email}
}
