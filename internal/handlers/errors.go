package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/auth"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

// jsonName reports fields by their wire name so errors match the request body.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

type errorBody struct {
	Kind     string           `json:"kind"`
	Message  string           `json:"message"`
	Field    string           `json:"field,omitempty"`
	Conflict *apperror.Window `json:"conflict,omitempty"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindInvalidStatus, apperror.KindInvalidTransition:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindInvalidSignature:
		return http.StatusUnauthorized
	case apperror.KindPaymentProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": {...}}. Persistence details never reach the client.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorBody{Kind: "unauthorized", Message: "invalid credentials"}})
		return
	case errors.Is(err, auth.ErrUserInactive):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errorBody{Kind: "forbidden", Message: "account is deactivated"}})
		return
	}

	e, ok := apperror.As(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errorBody{Kind: "internal", Message: "internal server error"}})
		return
	}
	body := errorBody{Kind: string(e.Kind), Message: e.Message, Field: e.Field, Conflict: e.Window}
	if e.Kind == apperror.KindPersistence {
		body.Message = "internal server error"
	}
	c.AbortWithStatusJSON(statusFor(e.Kind), gin.H{"error": body})
}

// bindJSON decodes and validates the body or responds with a validation
// error naming the first offending field.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		respondError(c, apperror.Validation(fields[0].Field(), fieldMessage(fields[0])))
		return false
	}
	respondError(c, apperror.Validation("body", "invalid JSON: "+err.Error()))
	return false
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "numeric":
		return field + " must contain digits only"
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be below %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return field + " is invalid"
	}
}
