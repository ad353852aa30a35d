package kafka

import (
	"time"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/google/uuid"
)

const (
	EventBookingCreated = "booking_created"
	EventFlightAdded    = "flight_added"
)

type BookingEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	BookingID      int64     `json:"booking_id"`
	UserID         int64     `json:"user_id"`
	Email          string    `json:"email,omitempty"`
	FlightID       int64     `json:"flight_id"`
	Seats          int       `json:"seats"`
	TotalCostCents int64     `json:"total_cost_cents"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type FlightEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	FlightID      int64     `json:"flight_id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	Seats         int       `json:"seats"`
	PriceCents    int64     `json:"price_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingCreated(b *domain.Booking, email string, priceCents int64) BookingEvent {
	return BookingEvent{
		EventID:        uuid.NewString(),
		Type:           EventBookingCreated,
		BookingID:      b.ID,
		UserID:         b.UserID,
		Email:          email,
		FlightID:       b.FlightID,
		Seats:          b.Seats,
		TotalCostCents: priceCents * int64(b.Seats),
		OccurredAt:     b.BookedAt,
	}
}

func NewFlightAdded(f *domain.Flight) FlightEvent {
	return FlightEvent{
		EventID:       uuid.NewString(),
		Type:          EventFlightAdded,
		FlightID:      f.ID,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		Seats:         f.Capacity,
		PriceCents:    f.PriceCents,
		OccurredAt:    f.CreatedAt,
	}
}
