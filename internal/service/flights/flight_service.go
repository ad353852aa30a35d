package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/repository"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
)

// SearchDateLayout is the accepted format for the optional search date.
const SearchDateLayout = "2006-01-02"

const defaultUpcomingLimit = 20

type FlightUseCase interface {
	ListUpcoming(ctx context.Context, limit int) ([]domain.Flight, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Invalidate(ctx context.Context)
}

type Cache interface {
	GetUpcoming(ctx context.Context, limit int) ([]domain.Flight, error)
	SetUpcoming(ctx context.Context, limit int, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type SearchInput struct {
	Origin      string
	Destination string
	Date        string
}

// SearchResult carries a non-empty Warning when the date could not be parsed
// and the search ran without a date filter.
type SearchResult struct {
	Flights []domain.Flight
	Warning string
}

type FlightService struct {
	repo         repository.FlightRepository
	cache        Cache
	log          logger.Logger
	defaultLimit int
	location     *time.Location
}

type FlightServiceOption func(*FlightService)

func WithDefaultLimit(limit int) FlightServiceOption {
	return func(s *FlightService) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithLocation sets the timezone search dates are interpreted in.
func WithLocation(loc *time.Location) FlightServiceOption {
	return func(s *FlightService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewFlightService accepts a nil cache; listings then always hit the database.
func NewFlightService(repo repository.FlightRepository, cache Cache, log logger.Logger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:         repo,
		cache:        cache,
		log:          log,
		defaultLimit: defaultUpcomingLimit,
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) ListUpcoming(ctx context.Context, limit int) ([]domain.Flight, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	if s.cache != nil {
		cached, err := s.cache.GetUpcoming(ctx, limit)
		if err != nil {
			s.log.Warn("flights cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.ListUpcoming(ctx, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetUpcoming(ctx, limit, flights); err != nil {
			s.log.Warn("flights cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	filter := domain.FlightFilter{
		Origin:      input.Origin,
		Destination: input.Destination,
	}

	result := &SearchResult{}
	if input.Date != "" {
		day, err := time.ParseInLocation(SearchDateLayout, input.Date, s.location)
		if err != nil {
			s.log.Warn("ignoring search date", "date", input.Date, "error", fmt.Errorf("%w: %v", domain.ErrInvalidDateFormat, err))
			result.Warning = fmt.Sprintf("invalid date format %q (expected YYYY-MM-DD), ignoring date", input.Date)
		} else {
			filter.DepartureFrom = day
			filter.DepartureTo = day.AddDate(0, 0, 1)
		}
	}

	flights, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	result.Flights = flights
	return result, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Invalidate drops cached listings. Failures are logged; the TTL bounds staleness.
func (s *FlightService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flights cache invalidation failed", "error", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
