package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/scooter-rental/internal/models"
)

var (
	standard = models.RateCard{Hourly: 100, Daily: 600}
	base     = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		rates    models.RateCard
		duration time.Duration
		expected float64
	}{
		{"one minute hits the floor", standard, time.Minute, 100},
		{"exactly one hour", standard, time.Hour, 100},
		{"partial hour rounds up", standard, 90 * time.Minute, 200},
		{"under a day is hourly", standard, 5 * time.Hour, 500},
		{"23 hours stays hourly", standard, 23 * time.Hour, 2300},
		{"exactly one day", standard, 24 * time.Hour, 600},
		{"25 hours is day plus hour", standard, 25 * time.Hour, 700},
		{"30 hours at the cap boundary", standard, 30 * time.Hour, 1200},
		{"31 hours capped to two days", standard, 31 * time.Hour, 1200},
		{"47 hours capped to two days", standard, 47 * time.Hour, 1200},
		{"two days", standard, 48 * time.Hour, 1200},
		{"no daily rate is hourly only", models.RateCard{Hourly: 80}, 30 * time.Hour, 2400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Price(tt.rates, base, base.Add(tt.duration)))
		})
	}
}

func TestPrice_Floor(t *testing.T) {
	for _, d := range []time.Duration{time.Nanosecond, time.Second, 30 * time.Minute, 59*time.Minute + 59*time.Second, time.Hour} {
		assert.Equal(t, standard.Hourly, Price(standard, base, base.Add(d)), "duration %s", d)
	}
}

func TestPrice_Monotonic(t *testing.T) {
	// Daily rate at or above 23 hourly units keeps the sub-day and multi-day bands continuous.
	rates := models.RateCard{Hourly: 20, Daily: 600}

	prev := 0.0
	for m := 1; m <= 96*60; m += 7 {
		p := Price(rates, base, base.Add(time.Duration(m)*time.Minute))
		assert.GreaterOrEqual(t, p, prev, "price dropped at %d minutes", m)
		prev = p
	}
}

func TestPrice_MonotonicWithinMultiDayBand(t *testing.T) {
	prev := 0.0
	for h := 24; h <= 24*7; h++ {
		p := Price(standard, base, base.Add(time.Duration(h)*time.Hour))
		assert.GreaterOrEqual(t, p, prev, "price dropped at %d hours", h)
		prev = p
	}
}

func TestCalculate_Breakdown(t *testing.T) {
	q := Calculate(standard, base, base.Add(25*time.Hour))
	assert.Equal(t, Quote{TotalHours: 25, Days: 1, RemainingHours: 1, Amount: 700}, q)

	q = Calculate(standard, base, base.Add(31*time.Hour))
	assert.Equal(t, Quote{TotalHours: 31, Days: 2, RemainingHours: 0, Amount: 1200}, q)
}

func TestTotalHours(t *testing.T) {
	assert.Equal(t, int64(1), TotalHours(base, base))
	assert.Equal(t, int64(1), TotalHours(base, base.Add(time.Minute)))
	assert.Equal(t, int64(2), TotalHours(base, base.Add(61*time.Minute)))
	assert.Equal(t, int64(24), TotalHours(base, base.Add(24*time.Hour)))
}
