package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/storage"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	ListUpcoming(ctx context.Context, limit int) ([]domain.Flight, error)
	Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SeatLedger(ctx context.Context, flightID int64) (*domain.SeatLedger, error)
}

const flightColumns = `id, flight_number, origin, destination, departure_time, capacity, seats_available, price_cents, created_at`

type PGFlightRepository struct {
	db *storage.Gateway
}

func NewFlightRepository(db *storage.Gateway) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	created, err := storage.QueryOne[domain.Flight](ctx, r.db, `INSERT INTO flights (flight_number, origin, destination, departure_time, capacity, seats_available, price_cents)
		VALUES ($1, $2, $3, $4, $5, $5, $6)
		RETURNING `+flightColumns,
		flight.FlightNumber, flight.Origin, flight.Destination, flight.DepartureTime, flight.Capacity, flight.PriceCents)
	if err != nil {
		return fmt.Errorf("create flight: %w", err)
	}
	*flight = *created
	return nil
}

func (r *PGFlightRepository) ListUpcoming(ctx context.Context, limit int) ([]domain.Flight, error) {
	flights, err := storage.QueryAll[domain.Flight](ctx, r.db, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE origin ILIKE $1 ESCAPE '\' AND destination ILIKE $2 ESCAPE '\'`
	args := []any{containsPattern(filter.Origin), containsPattern(filter.Destination)}
	if filter.HasDateRange() {
		query += ` AND departure_time >= $3 AND departure_time < $4`
		args = append(args, filter.DepartureFrom, filter.DepartureTo)
	}
	query += ` ORDER BY departure_time, id`

	flights, err := storage.QueryAll[domain.Flight](ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := storage.QueryOne[domain.Flight](ctx, r.db, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	if err != nil {
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	if flight == nil {
		return nil, domain.ErrFlightNotFound
	}
	return flight, nil
}

func (r *PGFlightRepository) SeatLedger(ctx context.Context, flightID int64) (*domain.SeatLedger, error) {
	ledger, err := storage.QueryOne[domain.SeatLedger](ctx, r.db, `SELECT f.id AS flight_id, f.capacity, f.seats_available,
			COALESCE((SELECT SUM(b.seats) FROM bookings b WHERE b.flight_id = f.id), 0)::int AS seats_booked
		FROM flights f WHERE f.id=$1`, flightID)
	if err != nil {
		return nil, fmt.Errorf("seat ledger for flight %d: %w", flightID, err)
	}
	if ledger == nil {
		return nil, domain.ErrFlightNotFound
	}
	return ledger, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into a literal substring ILIKE pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

var _ FlightRepository = (*PGFlightRepository)(nil)
