package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/storage"
	"github.com/Domenick1991/aeronavigator/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlightRepository(t *testing.T) {
	repo := NewFlightRepository(&storage.Gateway{})
	assert.NotNil(t, repo)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%NYC%", containsPattern(" NYC "))
	assert.Equal(t, "%%", containsPattern(""))
	assert.Equal(t, `%50\%\_off\\%`, containsPattern(`50%_off\`))
}

func mustCreateFlight(t *testing.T, repo FlightRepository, number, origin, destination string, departure time.Time, seats int, priceCents int64) *domain.Flight {
	t.Helper()
	f := &domain.Flight{
		FlightNumber:  number,
		Origin:        origin,
		Destination:   destination,
		DepartureTime: departure,
		Capacity:      seats,
		PriceCents:    priceCents,
	}
	require.NoError(t, repo.Create(context.Background(), f))
	return f
}

func TestPGFlightRepository_Integration(t *testing.T) {
	db := storagetest.NewGateway(t)
	repo := NewFlightRepository(db)
	ctx := context.Background()

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	match := mustCreateFlight(t, repo, "AN100", "NYC JFK", "LON Heathrow", day.Add(9*time.Hour), 150, 10000)
	mustCreateFlight(t, repo, "AN101", "nyc Newark", "lon Gatwick", day.Add(-time.Minute), 150, 10000)
	mustCreateFlight(t, repo, "AN102", "NYC JFK", "LON Heathrow", day.AddDate(0, 0, 1), 150, 10000)
	mustCreateFlight(t, repo, "AN200", "PAR", "LON", day.Add(12*time.Hour), 80, 5000)

	assert.NotZero(t, match.ID)
	assert.Equal(t, 150, match.SeatsAvailable)
	assert.Equal(t, 150, match.Capacity)

	t.Run("list ordered by departure", func(t *testing.T) {
		flights, err := repo.ListUpcoming(ctx, 20)
		require.NoError(t, err)
		require.Len(t, flights, 4)
		for i := 1; i < len(flights); i++ {
			assert.False(t, flights[i].DepartureTime.Before(flights[i-1].DepartureTime))
		}

		limited, err := repo.ListUpcoming(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("search by substring is case-insensitive", func(t *testing.T) {
		flights, err := repo.Search(ctx, domain.FlightFilter{Origin: "nyc", Destination: "LON"})
		require.NoError(t, err)
		assert.Len(t, flights, 3)
	})

	t.Run("search restricted to calendar day", func(t *testing.T) {
		flights, err := repo.Search(ctx, domain.FlightFilter{
			Origin:        "NYC",
			Destination:   "LON",
			DepartureFrom: day,
			DepartureTo:   day.AddDate(0, 0, 1),
		})
		require.NoError(t, err)
		require.Len(t, flights, 1)
		assert.Equal(t, "AN100", flights[0].FlightNumber)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		flights, err := repo.Search(ctx, domain.FlightFilter{Origin: "%", Destination: ""})
		require.NoError(t, err)
		assert.Empty(t, flights)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, "AN100", got.FlightNumber)

		_, err = repo.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	})

	t.Run("ledger of a fresh flight balances", func(t *testing.T) {
		ledger, err := repo.SeatLedger(ctx, match.ID)
		require.NoError(t, err)
		assert.True(t, ledger.Balanced())
		assert.Equal(t, 0, ledger.SeatsBooked)

		_, err = repo.SeatLedger(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	})
}
