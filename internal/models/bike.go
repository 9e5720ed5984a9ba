package models

import (
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BikeStatus is a display hint for the catalog. Availability is decided by bookings.
type BikeStatus string

const (
	BikeAvailable   BikeStatus = "available"
	BikeBooked      BikeStatus = "booked"
	BikeMaintenance BikeStatus = "maintenance"
)

// IsValidBikeStatus checks if a bike status is valid
func IsValidBikeStatus(s BikeStatus) bool {
	switch s {
	case BikeAvailable, BikeBooked, BikeMaintenance:
		return true
	default:
		return false
	}
}

// RateCard holds the hourly and daily rates used for pricing.
type RateCard struct {
	Hourly float64 `json:"hourly"`
	Daily  float64 `json:"daily"`
}

// Bike represents a rentable scooter or motorbike.
type Bike struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Model        string              `bson:"model" json:"model" binding:"required"`
	CC           int                 `bson:"cc" json:"cc" binding:"gt=0"`
	NumberPlate  string              `bson:"number_plate" json:"number_plate" binding:"required"`
	PricePerHour float64             `bson:"price_per_hour" json:"price_per_hour"`
	PricePerDay  float64             `bson:"price_per_day" json:"price_per_day"`
	Status       BikeStatus          `bson:"status" json:"status"`
	ImageURL     string              `bson:"image_url,omitempty" json:"image_url,omitempty"`
	AreaID       *primitive.ObjectID `bson:"area_id,omitempty" json:"area_id,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// Rates returns the bike's rate card.
func (b *Bike) Rates() RateCard {
	return RateCard{Hourly: b.PricePerHour, Daily: b.PricePerDay}
}

// Normalize trims text fields and fills the default status.
func (b *Bike) Normalize() {
	b.Model = strings.TrimSpace(b.Model)
	b.NumberPlate = strings.ToUpper(strings.TrimSpace(b.NumberPlate))
	if b.Status == "" {
		b.Status = BikeAvailable
	}
}

// Validate checks the rate card and status.
func (b *Bike) Validate() error {
	switch {
	case b.NumberPlate == "":
		return apperror.Validation("number_plate", "number plate is required")
	case b.PricePerHour <= 0:
		return apperror.Validation("price_per_hour", "hourly rate must be positive")
	case b.PricePerDay < 0:
		return apperror.Validation("price_per_day", "daily rate cannot be negative")
	case !IsValidBikeStatus(b.Status):
		return apperror.Validation("status", "status must be available, booked or maintenance")
	}
	return nil
}

// BikeFilter narrows catalog listings.
type BikeFilter struct {
	Status BikeStatus
	AreaID *primitive.ObjectID
}

// BikeSummary is the denormalized bike shown next to a booking.
type BikeSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Model       string             `json:"model"`
	NumberPlate string             `json:"number_plate"`
	ImageURL    string             `json:"image_url,omitempty"`
}

func (b *Bike) Summary() *BikeSummary {
	return &BikeSummary{ID: b.ID, Model: b.Model, NumberPlate: b.NumberPlate, ImageURL: b.ImageURL}
}
