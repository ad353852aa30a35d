package domain

import "time"

type Flight struct {
	ID             int64     `db:"id" json:"id"`
	FlightNumber   string    `db:"flight_number" json:"flight_number"`
	Origin         string    `db:"origin" json:"origin"`
	Destination    string    `db:"destination" json:"destination"`
	DepartureTime  time.Time `db:"departure_time" json:"departure_time"`
	Capacity       int       `db:"capacity" json:"capacity"`
	SeatsAvailable int       `db:"seats_available" json:"seats_available"`
	PriceCents     int64     `db:"price_cents" json:"price_cents"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FlightFilter narrows a catalog search. Zero-value bounds mean no date filter.
type FlightFilter struct {
	Origin        string
	Destination   string
	DepartureFrom time.Time
	DepartureTo   time.Time
}

func (f FlightFilter) HasDateRange() bool {
	return !f.DepartureFrom.IsZero() && !f.DepartureTo.IsZero()
}

// SeatLedger reconciles a flight's fixed capacity against its bookings.
type SeatLedger struct {
	FlightID       int64 `db:"flight_id"`
	Capacity       int   `db:"capacity"`
	SeatsAvailable int   `db:"seats_available"`
	SeatsBooked    int   `db:"seats_booked"`
}

func (l SeatLedger) Balanced() bool {
	return l.SeatsAvailable >= 0 && l.SeatsBooked+l.SeatsAvailable == l.Capacity
}
