package booking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/internal/repository"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
	AuditFlight(ctx context.Context, flightID int64) (*domain.SeatLedger, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Catalog is the part of the flight catalog that caches listings.
type Catalog interface {
	Invalidate(ctx context.Context)
}

type BookInput struct {
	UserID   int64
	Email    string
	FlightID int64
	Seats    int
}

type BookingService struct {
	bookings     repository.BookingRepository
	flights      repository.FlightRepository
	catalog      Catalog
	producer     Producer
	bookingTopic string
	log          logger.Logger
}

type BookingServiceOption func(*BookingService)

// WithEvents publishes booking_created events to topic after each booking.
func WithEvents(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func WithCatalog(catalog Catalog) BookingServiceOption {
	return func(s *BookingService) {
		s.catalog = catalog
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	log logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		flights:  flights,
		log:      log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves input.Seats on a flight. The availability check and the seat
// decrement happen in one statement, so concurrent bookings never overbook.
func (s *BookingService) Book(ctx context.Context, input BookInput) (*domain.Reservation, error) {
	if input.Seats <= 0 {
		return nil, domain.ErrInvalidSeats
	}

	reservation, err := s.bookings.Reserve(ctx, input.UserID, input.FlightID, input.Seats)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		"booking_id", reservation.ID,
		"user_id", reservation.UserID,
		"flight_id", reservation.FlightID,
		"seats", reservation.Seats,
	)

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	if err := s.publish(ctx, reservation, input.Email); err != nil {
		s.log.Warn("failed to publish booking event", "booking_id", reservation.ID, "error", err)
	}
	return reservation, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	return s.bookings.ListForUser(ctx, userID)
}

// AuditFlight returns ErrCapacityMismatch alongside the ledger when booked
// and available seats do not add up to the flight's capacity.
func (s *BookingService) AuditFlight(ctx context.Context, flightID int64) (*domain.SeatLedger, error) {
	ledger, err := s.flights.SeatLedger(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !ledger.Balanced() {
		s.log.Error("seat ledger out of balance",
			"flight_id", flightID,
			"capacity", ledger.Capacity,
			"seats_booked", ledger.SeatsBooked,
			"seats_available", ledger.SeatsAvailable,
		)
		return ledger, fmt.Errorf("%w: flight %d capacity %d, booked %d, available %d",
			domain.ErrCapacityMismatch, flightID, ledger.Capacity, ledger.SeatsBooked, ledger.SeatsAvailable)
	}
	return ledger, nil
}

func (s *BookingService) publish(ctx context.Context, reservation *domain.Reservation, email string) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.NewBookingCreated(&reservation.Booking, email, reservation.PriceCents)
	return s.producer.Publish(ctx, s.bookingTopic, strconv.FormatInt(reservation.FlightID, 10), event)
}

var _ BookingUseCase = (*BookingService)(nil)
