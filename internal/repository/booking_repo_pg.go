package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/storage"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	Reserve(ctx context.Context, userID, flightID int64, seats int) (*domain.Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
}

type PGBookingRepository struct {
	db *storage.Gateway
}

func NewBookingRepository(db *storage.Gateway) BookingRepository {
	return &PGBookingRepository{db: db}
}

type seatsRow struct {
	SeatsAvailable int `db:"seats_available"`
}

type priceRow struct {
	PriceCents int64 `db:"price_cents"`
}

// Reserve decrements seats_available only when enough seats remain and
// inserts the booking in the same transaction. Concurrent callers serialize
// on the flight row, so the availability check and the decrement cannot
// interleave.
func (r *PGBookingRepository) Reserve(ctx context.Context, userID, flightID int64, seats int) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		price, err := storage.CollectOne[priceRow](ctx, tx, `UPDATE flights SET seats_available = seats_available - $2
			WHERE id=$1 AND seats_available >= $2
			RETURNING price_cents`, flightID, seats)
		if err != nil {
			return err
		}
		if price == nil {
			current, err := storage.CollectOne[seatsRow](ctx, tx, `SELECT seats_available FROM flights WHERE id=$1`, flightID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrFlightNotFound
			}
			return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientSeats, seats, current.SeatsAvailable)
		}

		booking, err := storage.CollectOne[domain.Booking](ctx, tx, `INSERT INTO bookings (user_id, flight_id, seats)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, flight_id, seats, booked_at`, userID, flightID, seats)
		if err != nil {
			return err
		}
		reservation = &domain.Reservation{Booking: *booking, PriceCents: price.PriceCents}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *PGBookingRepository) ListForUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	rows, err := storage.QueryAll[domain.BookingDetail](ctx, r.db, `SELECT b.id, b.flight_id, f.flight_number, f.origin, f.destination, f.departure_time,
			b.seats, f.price_cents, b.booked_at
		FROM bookings b JOIN flights f ON b.flight_id = f.id
		WHERE b.user_id=$1
		ORDER BY b.booked_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %d: %w", userID, err)
	}
	return rows, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
