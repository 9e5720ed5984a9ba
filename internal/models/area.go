package models

import (
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Area is a pickup zone bikes can be assigned to.
type Area struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" binding:"required"`
	City      string             `bson:"city" json:"city" binding:"required"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (a *Area) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	if a.Name == "" {
		return apperror.Validation("name", "name is required")
	}
	if a.City == "" {
		return apperror.Validation("city", "city is required")
	}
	return nil
}
