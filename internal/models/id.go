package models

import (
	"strings"

	"github.com/ukydev/scooter-rental/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a hex id supplied by a caller, reporting field on failure.
func ParseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation(field, "invalid id")
	}
	return id, nil
}
