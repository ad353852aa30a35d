package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/internal/repository"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// DepartureLayout is the accepted format for a new flight's departure time.
const DepartureLayout = "2006-01-02 15:04"

type AdminUseCase interface {
	AddFlight(ctx context.Context, actor *domain.User, input AddFlightInput) (*domain.Flight, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type Catalog interface {
	Invalidate(ctx context.Context)
}

type AddFlightInput struct {
	FlightNumber  string `validate:"required,max=16"`
	Origin        string `validate:"required,max=64"`
	Destination   string `validate:"required,max=64"`
	DepartureTime string
	Seats         int   `validate:"gte=0"`
	PriceCents    int64 `validate:"gte=0"`
}

type AdminService struct {
	flights     repository.FlightRepository
	catalog     Catalog
	producer    Producer
	flightTopic string
	location    *time.Location
	validate    *validator.Validate
	log         logger.Logger
}

type AdminServiceOption func(*AdminService)

func WithEvents(producer Producer, topic string) AdminServiceOption {
	return func(s *AdminService) {
		s.producer = producer
		s.flightTopic = topic
	}
}

func WithCatalog(catalog Catalog) AdminServiceOption {
	return func(s *AdminService) {
		s.catalog = catalog
	}
}

// WithLocation sets the timezone departure times are entered in.
func WithLocation(loc *time.Location) AdminServiceOption {
	return func(s *AdminService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewAdminService(flights repository.FlightRepository, log logger.Logger, opts ...AdminServiceOption) *AdminService {
	s := &AdminService{
		flights:  flights,
		location: time.UTC,
		validate: validator.New(),
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFlight creates a flight with all seats available. Only admins may call
// it; nothing is written when the actor, departure time or fields are invalid.
func (s *AdminService) AddFlight(ctx context.Context, actor *domain.User, input AddFlightInput) (*domain.Flight, error) {
	if actor == nil || !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}

	departure, err := time.ParseInLocation(DepartureLayout, strings.TrimSpace(input.DepartureTime), s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (expected YYYY-MM-DD HH:MM)", domain.ErrInvalidDateTime, input.DepartureTime)
	}

	input.FlightNumber = strings.TrimSpace(input.FlightNumber)
	input.Origin = strings.TrimSpace(input.Origin)
	input.Destination = strings.TrimSpace(input.Destination)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		Origin:         input.Origin,
		Destination:    input.Destination,
		DepartureTime:  departure,
		Capacity:       input.Seats,
		SeatsAvailable: input.Seats,
		PriceCents:     input.PriceCents,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}

	s.log.Info("flight added",
		"flight_id", flight.ID,
		"flight_number", flight.FlightNumber,
		"admin_id", actor.ID,
	)

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	if s.producer != nil && s.flightTopic != "" {
		key := fmt.Sprintf("%d", flight.ID)
		if err := s.producer.Publish(ctx, s.flightTopic, key, kafka.NewFlightAdded(flight)); err != nil {
			s.log.Warn("failed to publish flight event", "flight_id", flight.ID, "error", err)
		}
	}
	return flight, nil
}

var _ AdminUseCase = (*AdminService)(nil)
