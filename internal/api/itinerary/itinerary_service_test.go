package itinerary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BHUWON12/ztraveler/config"
	generativeAI "github.com/BHUWON12/ztraveler/internal/api/generative_ai"
	"github.com/BHUWON12/ztraveler/internal/types"
)

// MockInventoryRepository is a mock implementation of inventory.Repository.
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) SearchHotels(ctx context.Context, city string, maxPrice float64, k int) ([]types.HotelRecord, error) {
	args := m.Called(ctx, city, maxPrice, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HotelRecord), args.Error(1)
}

func (m *MockInventoryRepository) SearchAttractions(ctx context.Context, city string, interests []string, k int) ([]types.ActivityRecord, error) {
	args := m.Called(ctx, city, interests, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ActivityRecord), args.Error(1)
}

func (m *MockInventoryRepository) SearchEvents(ctx context.Context, city, startISO, endISO string, k int) ([]types.ActivityRecord, error) {
	args := m.Called(ctx, city, startISO, endISO, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ActivityRecord), args.Error(1)
}

func (m *MockInventoryRepository) SearchFlights(ctx context.Context, origin, destination string, k int) ([]types.FlightRecord, error) {
	args := m.Called(ctx, origin, destination, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FlightRecord), args.Error(1)
}

func (m *MockInventoryRepository) SearchTransports(ctx context.Context, city string, k int) ([]types.TransportRecord, error) {
	args := m.Called(ctx, city, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TransportRecord), args.Error(1)
}

func (m *MockInventoryRepository) SearchCityExperiences(ctx context.Context, city string, interests []string, kEach int) ([]types.ExperienceRecord, error) {
	args := m.Called(ctx, city, interests, kEach)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ExperienceRecord), args.Error(1)
}

// MockNarrator is a mock implementation of Narrator.
type MockNarrator struct {
	mock.Mock
}

func (m *MockNarrator) GenerateNarrative(ctx context.Context, params generativeAI.NarrativeParams) (*types.Narrative, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Narrative), args.Error(1)
}

func newTestService(repo *MockInventoryRepository, narrator Narrator, planner config.PlannerConfig) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImpl(repo, narrator, planner, logger)
}

func date(year, month, day int) types.Date {
	return types.Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func jeddahInventory(repo *MockInventoryRepository) {
	repo.On("SearchHotels", mock.Anything, "Jeddah", mock.Anything, mock.Anything).Return([]types.HotelRecord{
		{ID: "h1", Name: "Red Sea Palace", City: "Jeddah", Price: 300, Rating: 4.6},
		{ID: "h2", Name: "Balad Inn", City: "Jeddah", Price: 120, Rating: 3.9},
	}, nil)
	repo.On("SearchAttractions", mock.Anything, "Jeddah", mock.Anything, mock.Anything).Return([]types.ActivityRecord{
		{ID: "a1", Name: "Al-Balad", City: "Jeddah", Category: "history", Fee: 0},
		{ID: "a2", Name: "Fountain", City: "Jeddah", Category: "landmark", Fee: 0},
		{ID: "a3", Name: "Aquarium", City: "Jeddah", Category: "family", Fee: 65},
		{ID: "a4", Name: "Corniche", City: "Jeddah", Category: "nature", Fee: 0},
		{ID: "a5", Name: "Souq", City: "Jeddah", Category: "shopping", Fee: 10},
		{ID: "a6", Name: "Open Air Museum", City: "Jeddah", Category: "culture", Fee: 20},
	}, nil)
	repo.On("SearchEvents", mock.Anything, "Jeddah", mock.Anything, mock.Anything, mock.Anything).Return([]types.ActivityRecord{
		{ID: "e1", Name: "Art Week", City: "Jeddah", Category: "art", Fee: 40},
	}, nil)
	repo.On("SearchTransports", mock.Anything, "Jeddah", mock.Anything).Return([]types.TransportRecord{
		{ID: "t1", Mode: "car", Provider: "Uber", City: "Jeddah", Price: 30},
	}, nil)
}

func TestBuildItinerary_Validation(t *testing.T) {
	svc := newTestService(new(MockInventoryRepository), nil, config.PlannerConfig{})

	t.Run("rejects empty destinations", func(t *testing.T) {
		_, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
			StartDate:   date(2025, 1, 1),
			EndDate:     date(2025, 1, 3),
			BudgetTotal: 3000,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		_, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
			Destinations: []string{"Jeddah"},
			StartDate:    date(2025, 1, 5),
			EndDate:      date(2025, 1, 1),
			BudgetTotal:  3000,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("rejects non-positive budget", func(t *testing.T) {
		_, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
			Destinations: []string{"Jeddah"},
			StartDate:    date(2025, 1, 1),
			EndDate:      date(2025, 1, 3),
			BudgetTotal:  0,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestBuildItinerary_EndToEnd(t *testing.T) {
	repo := new(MockInventoryRepository)
	jeddahInventory(repo)
	repo.On("SearchFlights", mock.Anything, "Riyadh", "Jeddah", flightSearchK).Return([]types.FlightRecord{
		{ID: "f1", Airline: "Saudia", Origin: "Riyadh", Destination: "Jeddah", Price: 420, DurationMinutes: 105},
		{ID: "f2", Airline: "flynas", Origin: "Riyadh", Destination: "Jeddah", Price: 310, DurationMinutes: 110},
	}, nil)
	repo.On("SearchFlights", mock.Anything, "Jeddah", "Riyadh", flightSearchK).Return([]types.FlightRecord{
		{ID: "f3", Airline: "Saudia", Origin: "Jeddah", Destination: "Riyadh", Price: 395, DurationMinutes: 100},
	}, nil)

	narrator := new(MockNarrator)
	narrator.On("GenerateNarrative", mock.Anything, mock.Anything).Return(nil, errors.New("model unavailable"))

	svc := newTestService(repo, narrator, config.PlannerConfig{})
	result, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
		Origin:       "riyadh",
		Destinations: []string{"jeddah"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 3),
		BudgetTotal:  3000,
		Interests:    []string{"history"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// 1 entry flight day + 3 city days + 1 return flight day.
	require.Len(t, result.Days, 5)
	for i, day := range result.Days {
		assert.Equal(t, i+1, day.DayIndex, "day_index sequence must be contiguous")
	}

	entry := result.Days[0]
	require.NotNil(t, entry.Flight)
	assert.Equal(t, "Riyadh", entry.City)
	assert.Equal(t, "flynas", entry.Flight.Airline, "cheapest direct flight expected")
	assert.Empty(t, entry.Activities)

	ret := result.Days[4]
	require.NotNil(t, ret.Flight)
	assert.Equal(t, "Jeddah", ret.City)
	assert.Equal(t, "Saudia", ret.Flight.Airline)

	// Hotel only on the first city day.
	require.NotNil(t, result.Days[1].Hotel)
	assert.Nil(t, result.Days[2].Hotel)
	assert.Nil(t, result.Days[3].Hotel)

	// Airport transfer precedes the local transport chain on arrival.
	require.NotEmpty(t, result.Days[1].TransportSegments)
	assert.Equal(t, "Airport Transfer", result.Days[1].TransportSegments[0].Provider)
	assert.Equal(t, "Jeddah Airport", result.Days[1].TransportSegments[0].FromPlace)

	// Grand total reconciles with the four subtotals.
	c := result.Cost
	assert.InDelta(t, c.HotelTotal+c.ActivitiesTotal+c.TransportTotal+c.FlightsTotal, c.Total, 0.01)
	assert.InDelta(t, 310+395, c.FlightsTotal, 0.01)

	// Narrative failed, so the deterministic fallback is used.
	assert.Equal(t, "3-day trip covering Jeddah.", result.SummaryText)
	assert.Contains(t, result.Highlights, "AI summary unavailable, using fallback description.")
	assert.Contains(t, result.TripID, "TRIP-")
}

func TestBuildItinerary_NoActivityRepeatsAcrossDays(t *testing.T) {
	repo := new(MockInventoryRepository)
	jeddahInventory(repo)
	repo.On("SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.FlightRecord{}, nil)

	svc := newTestService(repo, nil, config.PlannerConfig{})
	result, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
		Destinations: []string{"Jeddah"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 5),
		BudgetTotal:  5000,
	})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, day := range result.Days {
		for _, act := range day.Activities {
			assert.False(t, seen[act.ID], "activity %s appears in more than one day", act.ID)
			seen[act.ID] = true
		}
	}
}

func TestBuildItinerary_PerDayCapBound(t *testing.T) {
	repo := new(MockInventoryRepository)
	jeddahInventory(repo)
	repo.On("SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.FlightRecord{}, nil)

	svc := newTestService(repo, nil, config.PlannerConfig{})
	prefs := types.TravelerPrefs{
		Destinations: []string{"Jeddah"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 3),
		BudgetTotal:  1200,
	}
	result, err := svc.BuildItinerary(context.Background(), prefs)
	require.NoError(t, err)

	totalDays := 3
	dailyCap := AllocateBudget(1200).ActivitiesTotal / float64(totalDays)
	cityFees := 0.0
	for _, day := range result.Days {
		dayFees := 0.0
		for _, act := range day.Activities {
			dayFees += act.EntryFee
		}
		assert.LessOrEqual(t, dayFees, dailyCap+0.01)
		cityFees += dayFees
	}
	assert.LessOrEqual(t, cityFees, float64(totalDays)*dailyCap+0.01)
}

func TestBuildItinerary_HotelMissSkipsCity(t *testing.T) {
	repo := new(MockInventoryRepository)
	repo.On("SearchHotels", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.HotelRecord{}, nil)
	repo.On("SearchAttractions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.ActivityRecord{}, nil)
	repo.On("SearchEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.ActivityRecord{}, nil)
	repo.On("SearchTransports", mock.Anything, mock.Anything, mock.Anything).Return([]types.TransportRecord{}, nil)
	repo.On("SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.FlightRecord{}, nil)

	svc := newTestService(repo, nil, config.PlannerConfig{OnHotelMiss: config.HotelMissSkip})
	result, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
		Origin:       "Riyadh",
		Destinations: []string{"Abha", "Tabuk"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 4),
		BudgetTotal:  4000,
	})
	require.NoError(t, err)

	// Both cities dropped: only the entry and return travel days remain,
	// each carrying a synthetic fallback flight.
	require.Len(t, result.Days, 2)
	for i, day := range result.Days {
		assert.Equal(t, i+1, day.DayIndex)
		require.NotNil(t, day.Flight)
		assert.Empty(t, day.Activities)
		assert.Nil(t, day.Hotel)
	}
	assert.Equal(t, "Fallback Route", result.Days[0].Flight.Airline)
	assert.Equal(t, 1800.0, result.Days[0].Flight.Price)
	assert.Equal(t, 420, result.Days[0].Flight.DurationMinutes)

	assert.Len(t, result.Assumptions, 3) // two dropped cities + narrative note
	assert.Contains(t, result.Assumptions[0], "Abha")
	assert.Contains(t, result.Assumptions[1], "Tabuk")
}

func TestBuildItinerary_HotelMissPlaceholderKeepsCity(t *testing.T) {
	repo := new(MockInventoryRepository)
	repo.On("SearchHotels", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.HotelRecord{}, nil)
	repo.On("SearchAttractions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.ActivityRecord{}, nil)
	repo.On("SearchEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.ActivityRecord{}, nil)
	repo.On("SearchTransports", mock.Anything, mock.Anything, mock.Anything).Return([]types.TransportRecord{}, nil)
	repo.On("SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.FlightRecord{}, nil)

	svc := newTestService(repo, nil, config.PlannerConfig{OnHotelMiss: config.HotelMissPlaceholder})
	result, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
		Destinations: []string{"Abha"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 2),
		BudgetTotal:  2000,
	})
	require.NoError(t, err)

	require.Len(t, result.Days, 2)
	require.NotNil(t, result.Days[0].Hotel)
	assert.Equal(t, "Comfort Stay Abha", result.Days[0].Hotel.Name)
	assert.Equal(t, types.SourceFallback, result.Days[0].Hotel.Source)
	assert.Nil(t, result.Days[1].Hotel)
	assert.NotEmpty(t, result.Assumptions)
}

func TestBuildItinerary_MultiCityDayDistribution(t *testing.T) {
	repo := new(MockInventoryRepository)
	jeddahInventory(repo)
	repo.On("SearchHotels", mock.Anything, "Riyadh", mock.Anything, mock.Anything).Return([]types.HotelRecord{
		{ID: "rh1", Name: "Olaya Suites", City: "Riyadh", Price: 200, Rating: 4.1},
	}, nil)
	repo.On("SearchAttractions", mock.Anything, "Riyadh", mock.Anything, mock.Anything).Return([]types.ActivityRecord{
		{ID: "ra1", Name: "Masmak Fortress", City: "Riyadh", Category: "history", Fee: 0},
	}, nil)
	repo.On("SearchEvents", mock.Anything, "Riyadh", mock.Anything, mock.Anything, mock.Anything).Return([]types.ActivityRecord{}, nil)
	repo.On("SearchTransports", mock.Anything, "Riyadh", mock.Anything).Return([]types.TransportRecord{
		{ID: "rt1", Mode: "metro", Provider: "Riyadh Metro", City: "Riyadh", Price: 4},
	}, nil)
	repo.On("SearchFlights", mock.Anything, "Riyadh", "Jeddah", flightSearchK).Return([]types.FlightRecord{
		{ID: "f1", Airline: "Saudia", Origin: "Riyadh", Destination: "Jeddah", Price: 400, DurationMinutes: 105},
	}, nil)

	// 5 trip days over 2 cities: Riyadh gets 3, Jeddah 2, plus one
	// travel day for the inter-city hop.
	svc := newTestService(repo, nil, config.PlannerConfig{})
	result, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
		Destinations: []string{"Riyadh", "Jeddah"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 5),
		BudgetTotal:  6000,
	})
	require.NoError(t, err)

	var riyadhDays, jeddahDays, travelDays int
	for i, day := range result.Days {
		assert.Equal(t, i+1, day.DayIndex)
		switch {
		case day.Flight != nil:
			travelDays++
		case day.City == "Riyadh":
			riyadhDays++
		case day.City == "Jeddah":
			jeddahDays++
		}
	}
	assert.Equal(t, 3, riyadhDays)
	assert.Equal(t, 2, jeddahDays)
	assert.Equal(t, 1, travelDays)
	require.Len(t, result.Days, 6)
}

func TestBuildItinerary_NarrativeSuccess(t *testing.T) {
	repo := new(MockInventoryRepository)
	jeddahInventory(repo)
	repo.On("SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.FlightRecord{}, nil)

	narrator := new(MockNarrator)
	narrator.On("GenerateNarrative", mock.Anything, mock.Anything).Return(&types.Narrative{
		SummaryText:  "A coastal escape built around old Jeddah.",
		Highlights:   []string{"Al-Balad at sunset"},
		AICommentary: "Fits a history-focused traveler.",
	}, nil)

	svc := newTestService(repo, narrator, config.PlannerConfig{})
	result, err := svc.BuildItinerary(context.Background(), types.TravelerPrefs{
		Destinations: []string{"Jeddah"},
		StartDate:    date(2025, 1, 1),
		EndDate:      date(2025, 1, 2),
		BudgetTotal:  2000,
		Interests:    []string{"history"},
	})
	require.NoError(t, err)

	assert.Equal(t, "A coastal escape built around old Jeddah.", result.SummaryText)
	assert.Equal(t, []string{"Al-Balad at sunset"}, result.Highlights)
	assert.Contains(t, result.Assumptions, "Fits a history-focused traveler.")
	narrator.AssertExpectations(t)
}
