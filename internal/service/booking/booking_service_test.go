package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Reserve(ctx context.Context, userID, flightID int64, seats int) (*domain.Reservation, error) {
	args := m.Called(ctx, userID, flightID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingRepository) ListForUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) ListUpcoming(ctx context.Context, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SeatLedger(ctx context.Context, flightID int64) (*domain.SeatLedger, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatLedger), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

// atomicBookings mirrors the conditional decrement: the check and the
// decrement happen under one lock.
type atomicBookings struct {
	mu        sync.Mutex
	capacity  map[int64]int
	available map[int64]int
	price     map[int64]int64
	bookings  []domain.Booking
}

func newAtomicBookings() *atomicBookings {
	return &atomicBookings{
		capacity:  make(map[int64]int),
		available: make(map[int64]int),
		price:     make(map[int64]int64),
	}
}

func (r *atomicBookings) addFlight(id int64, seats int, priceCents int64) {
	r.capacity[id] = seats
	r.available[id] = seats
	r.price[id] = priceCents
}

func (r *atomicBookings) Reserve(_ context.Context, userID, flightID int64, seats int) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	available, ok := r.available[flightID]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	if available < seats {
		return nil, fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientSeats, seats, available)
	}
	r.available[flightID] = available - seats
	b := domain.Booking{
		ID:       int64(len(r.bookings) + 1),
		UserID:   userID,
		FlightID: flightID,
		Seats:    seats,
		BookedAt: time.Now(),
	}
	r.bookings = append(r.bookings, b)
	return &domain.Reservation{Booking: b, PriceCents: r.price[flightID]}, nil
}

func (r *atomicBookings) ListForUser(_ context.Context, userID int64) ([]domain.BookingDetail, error) {
	return nil, nil
}

func (r *atomicBookings) ledger(flightID int64) domain.SeatLedger {
	r.mu.Lock()
	defer r.mu.Unlock()
	booked := 0
	for _, b := range r.bookings {
		if b.FlightID == flightID {
			booked += b.Seats
		}
	}
	return domain.SeatLedger{
		FlightID:       flightID,
		Capacity:       r.capacity[flightID],
		SeatsAvailable: r.available[flightID],
		SeatsBooked:    booked,
	}
}

func TestBookingService_Book(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}
	mockCatalog := &MockCatalog{}
	service := NewBookingService(mockRepo, &MockFlightRepository{}, logger.NewNop(),
		WithEvents(mockProducer, "aeronavigator.bookings"),
		WithCatalog(mockCatalog),
	)
	ctx := context.Background()

	reservation := &domain.Reservation{
		Booking:    domain.Booking{ID: 7, UserID: 3, FlightID: 4, Seats: 3, BookedAt: time.Now()},
		PriceCents: 10000,
	}
	mockRepo.On("Reserve", ctx, int64(3), int64(4), 3).Return(reservation, nil).Once()
	mockCatalog.On("Invalidate", ctx).Once()
	mockProducer.On("Publish", ctx, "aeronavigator.bookings", "4", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated &&
			e.BookingID == 7 &&
			e.Email == "ada@example.com" &&
			e.TotalCostCents == 30000 &&
			e.EventID != ""
	})).Return(nil).Once()

	result, err := service.Book(ctx, BookInput{UserID: 3, Email: "ada@example.com", FlightID: 4, Seats: 3})

	require.NoError(t, err)
	assert.Equal(t, int64(30000), result.TotalCostCents())
	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_Book_InvalidSeats(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, &MockFlightRepository{}, logger.NewNop())

	for _, seats := range []int{0, -2} {
		_, err := service.Book(context.Background(), BookInput{UserID: 1, FlightID: 1, Seats: seats})
		assert.ErrorIs(t, err, domain.ErrInvalidSeats)
	}
	mockRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_Book_InsufficientSeatsPublishesNothing(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}
	mockCatalog := &MockCatalog{}
	service := NewBookingService(mockRepo, &MockFlightRepository{}, logger.NewNop(),
		WithEvents(mockProducer, "aeronavigator.bookings"),
		WithCatalog(mockCatalog),
	)
	ctx := context.Background()

	mockRepo.On("Reserve", ctx, int64(1), int64(4), 5).
		Return(nil, fmt.Errorf("%w: requested 5, available 2", domain.ErrInsufficientSeats)).Once()

	result, err := service.Book(ctx, BookInput{UserID: 1, FlightID: 4, Seats: 5})

	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
	assert.Nil(t, result)
	mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockCatalog.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestBookingService_Book_FlightNotFound(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, &MockFlightRepository{}, logger.NewNop())
	ctx := context.Background()

	mockRepo.On("Reserve", ctx, int64(1), int64(99), 1).Return(nil, domain.ErrFlightNotFound).Once()

	_, err := service.Book(ctx, BookInput{UserID: 1, FlightID: 99, Seats: 1})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestBookingService_Book_PublishFailureKeepsBooking(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(mockRepo, &MockFlightRepository{}, logger.NewNop(),
		WithEvents(mockProducer, "aeronavigator.bookings"),
	)
	ctx := context.Background()

	reservation := &domain.Reservation{Booking: domain.Booking{ID: 1, UserID: 1, FlightID: 2, Seats: 1}, PriceCents: 500}
	mockRepo.On("Reserve", ctx, int64(1), int64(2), 1).Return(reservation, nil).Once()
	mockProducer.On("Publish", ctx, "aeronavigator.bookings", "2", mock.Anything).Return(errors.New("broker down")).Once()

	result, err := service.Book(ctx, BookInput{UserID: 1, FlightID: 2, Seats: 1})

	assert.NoError(t, err)
	assert.Equal(t, reservation, result)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_Book_ConcurrentNeverOverbooks(t *testing.T) {
	repo := newAtomicBookings()
	repo.addFlight(1, 10, 10000)
	service := NewBookingService(repo, &MockFlightRepository{}, logger.NewNop())
	ctx := context.Background()

	const workers = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := service.Book(ctx, BookInput{UserID: userID, FlightID: 1, Seats: 2})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				admitted += 2
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
			rejected += 2
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 10, admitted)
	assert.Equal(t, 40, rejected)

	ledger := repo.ledger(1)
	assert.Equal(t, 0, ledger.SeatsAvailable)
	assert.True(t, ledger.Balanced())
}

func TestBookingService_ListForUser(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, &MockFlightRepository{}, logger.NewNop())
	ctx := context.Background()

	details := []domain.BookingDetail{
		{ID: 2, FlightNumber: "AN2", Seats: 1, PriceCents: 100},
		{ID: 1, FlightNumber: "AN1", Seats: 3, PriceCents: 10000},
	}
	mockRepo.On("ListForUser", ctx, int64(5)).Return(details, nil).Once()

	got, err := service.ListForUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, details, got)
	assert.Equal(t, int64(30000), got[1].TotalCostCents())
}

func TestBookingService_AuditFlight(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	service := NewBookingService(&MockBookingRepository{}, mockFlights, logger.NewNop())
	ctx := context.Background()

	balanced := &domain.SeatLedger{FlightID: 1, Capacity: 10, SeatsAvailable: 4, SeatsBooked: 6}
	broken := &domain.SeatLedger{FlightID: 2, Capacity: 10, SeatsAvailable: 5, SeatsBooked: 6}
	mockFlights.On("SeatLedger", ctx, int64(1)).Return(balanced, nil).Once()
	mockFlights.On("SeatLedger", ctx, int64(2)).Return(broken, nil).Once()
	mockFlights.On("SeatLedger", ctx, int64(3)).Return(nil, domain.ErrFlightNotFound).Once()

	ledger, err := service.AuditFlight(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, balanced, ledger)

	ledger, err = service.AuditFlight(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrCapacityMismatch)
	assert.Equal(t, broken, ledger)

	_, err = service.AuditFlight(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}
