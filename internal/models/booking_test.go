package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/scooter-rental/internal/apperror"
)

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, status)

	_, err = ParseBookingStatus("returned")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalidStatus))
	assert.Contains(t, err.Error(), "returned")
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     BookingStatus
		to       BookingStatus
		expected bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingActive, false},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingActive, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingCompleted, false},
		{BookingActive, BookingCompleted, true},
		{BookingActive, BookingCancelled, false},
		{BookingActive, BookingActive, false},
		{BookingCompleted, BookingActive, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	assert.True(t, BookingCompleted.IsTerminal())
	assert.True(t, BookingCancelled.IsTerminal())
	assert.False(t, BookingPending.IsTerminal())
	assert.False(t, BookingConfirmed.IsTerminal())
	assert.False(t, BookingActive.IsTerminal())
}

func TestBooking_Overlaps(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }
	a := &Booking{Start: at(10), End: at(12), Status: BookingConfirmed}

	assert.True(t, a.Overlaps(at(11), at(13)))
	assert.True(t, a.Overlaps(at(9), at(11)))
	assert.True(t, a.Overlaps(at(10), at(12)))
	assert.True(t, a.Overlaps(at(8), at(14)))
	assert.False(t, a.Overlaps(at(12), at(14)), "touching end must not conflict")
	assert.False(t, a.Overlaps(at(8), at(10)), "touching start must not conflict")

	a.Status = BookingCancelled
	assert.False(t, a.Overlaps(at(11), at(13)))
}

func TestCustomer_Validate(t *testing.T) {
	base := func() Customer {
		return Customer{Name: "Asha", Phone: "9876543210", LicenseImageURL: "https://files/license.jpg"}
	}

	c := base()
	assert.NoError(t, c.Validate())

	c = base()
	c.Name = "   "
	c.Normalize()
	err := c.Validate()
	require.Error(t, err)
	e, _ := apperror.As(err)
	assert.Equal(t, "name", e.Field)

	c = base()
	c.LicenseImageURL = ""
	err = c.Validate()
	require.Error(t, err)
	e, _ = apperror.As(err)
	assert.Equal(t, "id_documents", e.Field)

	c = base()
	c.LicenseImageURL = ""
	c.AadhaarImageURL = "https://files/aadhaar.jpg"
	assert.NoError(t, c.Validate())
}

func TestBike_Validate(t *testing.T) {
	b := Bike{Model: "Activa", CC: 110, NumberPlate: " ka01ab1234 ", PricePerHour: 100, PricePerDay: 600}
	b.Normalize()
	assert.Equal(t, "KA01AB1234", b.NumberPlate)
	assert.Equal(t, BikeAvailable, b.Status)
	assert.NoError(t, b.Validate())

	b.PricePerHour = 0
	assert.True(t, apperror.Is(b.Validate(), apperror.KindValidation))

	b.PricePerHour = 100
	b.Status = "stolen"
	assert.True(t, apperror.Is(b.Validate(), apperror.KindValidation))
}
