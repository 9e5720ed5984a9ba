// Package pricing turns a rental window and a rate card into a charge.
package pricing

import (
	"time"

	"github.com/ukydev/scooter-rental/internal/models"
)

const hoursPerDay = 24

// Quote is the breakdown behind a price.
type Quote struct {
	TotalHours     int64   `json:"total_hours"`
	Days           int64   `json:"days"`
	RemainingHours int64   `json:"remaining_hours"`
	Amount         float64 `json:"amount"`
}

// TotalHours rounds the window up to whole hours with a floor of one.
func TotalHours(start, end time.Time) int64 {
	d := end.Sub(start)
	hours := int64(d / time.Hour)
	if d%time.Hour > 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}

// Calculate prices the window. Callers must reject end <= start beforehand.
func Calculate(rates models.RateCard, start, end time.Time) Quote {
	hours := TotalHours(start, end)
	q := Quote{TotalHours: hours}

	if hours < hoursPerDay || rates.Daily <= 0 {
		q.RemainingHours = hours
		q.Amount = float64(hours) * rates.Hourly
		return q
	}

	q.Days = hours / hoursPerDay
	q.RemainingHours = hours % hoursPerDay
	extra := float64(q.RemainingHours) * rates.Hourly
	if extra > rates.Daily {
		// a partial day never costs more than a full one
		q.Days++
		q.RemainingHours = 0
		extra = 0
	}
	q.Amount = float64(q.Days)*rates.Daily + extra
	return q
}

// Price returns only the amount of Calculate.
func Price(rates models.RateCard, start, end time.Time) float64 {
	return Calculate(rates, start, end).Amount
}
