package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		in    string
		cents int64
	}{
		{"100", 10000},
		{"100.0", 10000},
		{"99.5", 9950},
		{"1250.05", 125005},
		{".75", 75},
		{" 0 ", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePrice(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.cents, got)
		})
	}

	for _, bad := range []string{"", "-1", "+5", "1.234", "1.", "abc", "1.-5", "1,50"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParsePrice(bad)
			assert.ErrorIs(t, err, ErrInvalidPrice)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "300.00", FormatPrice(30000))
	assert.Equal(t, "0.05", FormatPrice(5))
	assert.Equal(t, "-1.50", FormatPrice(-150))
}

func TestBookingDetail_TotalCost(t *testing.T) {
	price, err := ParsePrice("100.0")
	assert.NoError(t, err)

	b := BookingDetail{Seats: 3, PriceCents: price}
	assert.Equal(t, int64(30000), b.TotalCostCents())
	assert.Equal(t, "300.00", FormatPrice(b.TotalCostCents()))
}

func TestSeatLedger_Balanced(t *testing.T) {
	assert.True(t, SeatLedger{Capacity: 10, SeatsAvailable: 4, SeatsBooked: 6}.Balanced())
	assert.False(t, SeatLedger{Capacity: 10, SeatsAvailable: 5, SeatsBooked: 6}.Balanced())
	assert.False(t, SeatLedger{Capacity: 10, SeatsAvailable: -1, SeatsBooked: 11}.Balanced())
}

func TestFlightFilter_HasDateRange(t *testing.T) {
	assert.False(t, FlightFilter{Origin: "NYC"}.HasDateRange())
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, FlightFilter{DepartureFrom: day, DepartureTo: day.AddDate(0, 0, 1)}.HasDateRange())
}
