// Package apperror defines the error kinds surfaced by the rental core.
package apperror

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error independently of its message.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidStatus     Kind = "invalid_status"
	KindInvalidTransition Kind = "invalid_transition"
	KindPaymentProvider   Kind = "payment_provider"
	KindInvalidSignature  Kind = "invalid_signature"
	KindPersistence       Kind = "persistence"
)

// Window is the interval of a conflicting booking.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Error is the structured error returned by services.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Window  *Window
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports bad input on field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// NotFound reports a missing entity.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Field: entity, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Overlap reports that the requested window collides with an existing booking.
func Overlap(start, end time.Time) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: "bike is already booked for the selected time",
		Window:  &Window{Start: start, End: end},
	}
}

func InvalidStatus(value string) *Error {
	return &Error{Kind: KindInvalidStatus, Field: "status", Message: fmt.Sprintf("invalid status value %q", value)}
}

// InvalidTransition reports a status change the lifecycle does not allow.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Field:   "status",
		Message: fmt.Sprintf("cannot change status from %s to %s", from, to),
	}
}

func Provider(msg string, err error) *Error {
	return &Error{Kind: KindPaymentProvider, Message: msg, Err: err}
}

func InvalidSignature() *Error {
	return &Error{Kind: KindInvalidSignature, Message: "invalid webhook signature"}
}

// Persistence wraps a storage failure for the named operation.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: op + " failed", Err: err}
}

// KindOf returns the kind of err, or an empty Kind for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the structured error inside err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
