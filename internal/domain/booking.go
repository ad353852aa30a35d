package domain

import "time"

type Booking struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	FlightID int64     `db:"flight_id"`
	Seats    int       `db:"seats"`
	BookedAt time.Time `db:"booked_at"`
}

// Reservation is a freshly created booking with the unit price it was charged.
type Reservation struct {
	Booking
	PriceCents int64
}

func (r Reservation) TotalCostCents() int64 {
	return r.PriceCents * int64(r.Seats)
}

// BookingDetail is a booking joined with the flight it reserves seats on.
type BookingDetail struct {
	ID            int64     `db:"id"`
	FlightID      int64     `db:"flight_id"`
	FlightNumber  string    `db:"flight_number"`
	Origin        string    `db:"origin"`
	Destination   string    `db:"destination"`
	DepartureTime time.Time `db:"departure_time"`
	Seats         int       `db:"seats"`
	PriceCents    int64     `db:"price_cents"`
	BookedAt      time.Time `db:"booked_at"`
}

func (b BookingDetail) TotalCostCents() int64 {
	return b.PriceCents * int64(b.Seats)
}
