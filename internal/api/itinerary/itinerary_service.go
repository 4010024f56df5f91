package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/BHUWON12/ztraveler/app/observability/metrics"
	"github.com/BHUWON12/ztraveler/config"
	generativeAI "github.com/BHUWON12/ztraveler/internal/api/generative_ai"
	"github.com/BHUWON12/ztraveler/internal/api/inventory"
	"github.com/BHUWON12/ztraveler/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary builds.
type Service interface {
	BuildItinerary(ctx context.Context, prefs types.TravelerPrefs) (*types.Itinerary, error)
}

// Narrator produces the generative trip summary. Failures are recovered
// with deterministic fallback text, never surfaced as build errors.
type Narrator interface {
	GenerateNarrative(ctx context.Context, params generativeAI.NarrativeParams) (*types.Narrative, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	inventory inventory.Repository
	narrator  Narrator
	planner   config.PlannerConfig
}

func NewServiceImpl(inv inventory.Repository, narrator Narrator, planner config.PlannerConfig, logger *slog.Logger) *ServiceImpl {
	if planner.ActivitySlots <= 0 {
		planner.ActivitySlots = 3
	}
	if planner.TransportLegsPerDay <= 0 {
		planner.TransportLegsPerDay = 3
	}
	if planner.OnHotelMiss == "" {
		planner.OnHotelMiss = config.HotelMissSkip
	}
	return &ServiceImpl{
		logger:    logger,
		inventory: inv,
		narrator:  narrator,
		planner:   planner,
	}
}

// Retrieval depths per category, matching the seeded index sizes.
const (
	hotelSearchK      = 8
	attractionSearchK = 20
	eventSearchK      = 10
	transportSearchK  = 5
)

// cityInventory holds one city's candidate records. Fields are written
// by independent goroutines during the fan-out, one writer per field.
type cityInventory struct {
	hotels      []types.HotelRecord
	attractions []types.ActivityRecord
	events      []types.ActivityRecord
	transports  []types.TransportRecord
}

// retrieveCityInventory fans out the four read-only category lookups
// concurrently and waits for all of them. Retrieval errors degrade to
// empty candidate lists.
func (s *ServiceImpl) retrieveCityInventory(ctx context.Context, city string, prefs types.TravelerPrefs, maxNightly float64) *cityInventory {
	inv := &cityInventory{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hotels, err := s.inventory.SearchHotels(gctx, city, maxNightly, hotelSearchK)
		if err != nil {
			s.logger.WarnContext(gctx, "Hotel retrieval failed", slog.String("city", city), slog.Any("error", err))
			return nil
		}
		inv.hotels = hotels
		return nil
	})
	g.Go(func() error {
		attractions, err := s.inventory.SearchAttractions(gctx, city, prefs.Interests, attractionSearchK)
		if err != nil {
			s.logger.WarnContext(gctx, "Attraction retrieval failed", slog.String("city", city), slog.Any("error", err))
			return nil
		}
		inv.attractions = attractions
		return nil
	})
	g.Go(func() error {
		events, err := s.inventory.SearchEvents(gctx, city,
			prefs.StartDate.Format("2006-01-02"), prefs.EndDate.Format("2006-01-02"), eventSearchK)
		if err != nil {
			s.logger.WarnContext(gctx, "Event retrieval failed", slog.String("city", city), slog.Any("error", err))
			return nil
		}
		inv.events = events
		return nil
	})
	g.Go(func() error {
		transports, err := s.inventory.SearchTransports(gctx, city, transportSearchK)
		if err != nil {
			s.logger.WarnContext(gctx, "Transport retrieval failed", slog.String("city", city), slog.Any("error", err))
			return nil
		}
		inv.transports = transports
		return nil
	})

	_ = g.Wait()
	return inv
}

func cheapestTransport(transports []types.TransportRecord) *types.TransportRecord {
	if len(transports) == 0 {
		return nil
	}
	best := transports[0]
	for _, t := range transports[1:] {
		if t.Price < best.Price {
			best = t
		}
	}
	return &best
}

// localTransportChain builds hotel → activity → … → hotel legs using
// the cheapest local transport option.
func localTransportChain(hotel *types.Hotel, acts []types.Activity, transport *types.TransportRecord) []types.TransportSegment {
	if transport == nil || hotel == nil || len(acts) == 0 {
		return []types.TransportSegment{}
	}
	segments := make([]types.TransportSegment, 0, len(acts)+1)
	for i, act := range acts {
		from := hotel.Name
		if i > 0 {
			from = acts[i-1].Name
		}
		segments = append(segments, types.TransportSegment{
			Mode:      transport.Mode,
			Provider:  transport.Provider,
			FromPlace: from,
			ToPlace:   act.Name,
			Price:     transport.Price,
			Source:    transport.Source,
		})
	}
	segments = append(segments, types.TransportSegment{
		Mode:      transport.Mode,
		Provider:  transport.Provider,
		FromPlace: acts[len(acts)-1].Name,
		ToPlace:   hotel.Name,
		Price:     transport.Price,
		Source:    transport.Source,
	})
	return segments
}

func travelDay(dayIndex int, city string, flight types.FlightSegment, notes string) types.DayPlan {
	return types.DayPlan{
		DayIndex:          dayIndex,
		City:              city,
		Activities:        []types.Activity{},
		TransportSegments: []types.TransportSegment{},
		Flight:            &flight,
		Notes:             notes,
		EstimatedDayCost:  0,
	}
}

func newTripID() string {
	return "TRIP-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// BuildItinerary drives the whole multi-city construction loop. Once
// the input validates, it always returns a structurally valid itinerary:
// backend and narrative failures degrade the plan instead of failing it.
func (s *ServiceImpl) BuildItinerary(ctx context.Context, prefs types.TravelerPrefs) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "BuildItinerary", trace.WithAttributes(
		attribute.Int("destinations.count", len(prefs.Destinations)),
	))
	defer span.End()
	buildStart := time.Now()

	prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	totalDays := prefs.TotalDays()
	numCities := len(prefs.Destinations)

	allocation := AllocateBudget(prefs.BudgetTotal)
	dailyCap := allocation.ActivitiesTotal / float64(totalDays)
	maxNightly := allocation.HotelTotal / float64(totalDays)

	var days []types.DayPlan
	dayIndex := 1
	used := make(map[string]struct{})
	var assumptions []string

	var hotelTotal, activitiesTotal, transportTotal, flightsTotal float64

	// Entry route: origin → first destination.
	if prefs.Origin != "" {
		segments := s.planRoute(ctx, prefs.Origin, prefs.Destinations[0], internationalHubs, internationalFallback)
		flightsTotal += segmentsTotal(segments)
		days = append(days, travelDay(dayIndex, prefs.Origin, segments[0],
			fmt.Sprintf("Travel day from %s to %s.", prefs.Origin, prefs.Destinations[0])))
		dayIndex++
	}

	remainder := totalDays % numCities
	for idx, city := range prefs.Destinations {
		cityDays := totalDays / numCities
		if idx < remainder {
			cityDays++
		}
		if cityDays < 1 {
			cityDays = 1
		}

		inv := s.retrieveCityInventory(ctx, city, prefs, maxNightly)

		hotel := pickHotel(inv.hotels, cityDays, allocation.HotelTotal)
		if hotel == nil {
			if s.planner.OnHotelMiss == config.HotelMissPlaceholder {
				hotel = &types.Hotel{
					Name:          "Comfort Stay " + city,
					City:          city,
					PricePerNight: round2(maxNightly),
					Source:        types.SourceFallback,
				}
				assumptions = append(assumptions,
					fmt.Sprintf("No hotel inventory for %s; synthesized a placeholder stay at the nightly budget.", city))
			} else {
				s.logger.WarnContext(ctx, "No hotel found, dropping city from plan", slog.String("city", city))
				assumptions = append(assumptions,
					fmt.Sprintf("No hotel inventory for %s; the city was dropped from the plan.", city))
				continue
			}
		}

		pool := make([]types.ActivityRecord, 0, len(inv.attractions)+len(inv.events))
		pool = append(pool, inv.attractions...)
		pool = append(pool, inv.events...)
		bestTransport := cheapestTransport(inv.transports)

		cityActivityFees := 0.0
		for n := 0; n < cityDays; n++ {
			acts := pickActivities(pool, dailyCap, dayIndex, used, s.planner.ActivitySlots)
			if acts == nil {
				acts = []types.Activity{}
			}
			dayCost := 0.0
			for _, a := range acts {
				dayCost += a.EntryFee
			}
			cityActivityFees += dayCost

			segments := localTransportChain(hotel, acts, bestTransport)

			// Airport transfer on the arrival day of the first city.
			if idx == 0 && n == 0 && prefs.Origin != "" {
				transferPrice := 100.0
				if bestTransport != nil {
					transferPrice = bestTransport.Price
				}
				segments = append([]types.TransportSegment{{
					Mode:      "car",
					Provider:  "Airport Transfer",
					FromPlace: city + " Airport",
					ToPlace:   hotel.Name,
					Price:     transferPrice,
				}}, segments...)
			}

			var dayHotel *types.Hotel
			if n == 0 {
				dayHotel = hotel
				dayCost += hotel.PricePerNight
			}

			days = append(days, types.DayPlan{
				DayIndex:          dayIndex,
				City:              city,
				Hotel:             dayHotel,
				Activities:        acts,
				TransportSegments: segments,
				Notes:             fmt.Sprintf("Auto-generated day in %s.", city),
				EstimatedDayCost:  round2(dayCost),
			})
			dayIndex++
		}

		hotelTotal += hotel.PricePerNight * float64(cityDays)
		activitiesTotal += cityActivityFees
		if bestTransport != nil {
			transportTotal += bestTransport.Price * float64(cityDays) * float64(s.planner.TransportLegsPerDay)
		}

		// Inter-city hop to the next destination, one travel day per leg.
		if idx < numCities-1 {
			next := prefs.Destinations[idx+1]
			segments := s.planRoute(ctx, city, next, domesticHubs, domesticFallback)
			flightsTotal += segmentsTotal(segments)
			for _, seg := range segments {
				days = append(days, travelDay(dayIndex, seg.FromCity, seg,
					fmt.Sprintf("Travel day: %s to %s.", seg.FromCity, seg.ToCity)))
				dayIndex++
			}
		}
	}

	// Return route: last destination → origin.
	if prefs.Origin != "" {
		lastCity := prefs.Destinations[numCities-1]
		segments := s.planRoute(ctx, lastCity, prefs.Origin, internationalHubs, internationalFallback)
		flightsTotal += segmentsTotal(segments)
		days = append(days, travelDay(dayIndex, lastCity, segments[0],
			fmt.Sprintf("Return flight from %s to %s.", lastCity, prefs.Origin)))
		dayIndex++
	}

	cost := types.TripCost{
		HotelTotal:      round2(hotelTotal),
		ActivitiesTotal: round2(activitiesTotal),
		TransportTotal:  round2(transportTotal),
		FlightsTotal:    round2(flightsTotal),
	}
	cost.Total = round2(cost.HotelTotal + cost.ActivitiesTotal + cost.TransportTotal + cost.FlightsTotal)

	summary, highlights, narrativeNotes := s.narrate(ctx, prefs, totalDays)
	assumptions = append(assumptions, narrativeNotes...)

	result := &types.Itinerary{
		TripID:      newTripID(),
		SummaryText: summary,
		Highlights:  highlights,
		Days:        days,
		Cost:        cost,
		Assumptions: assumptions,
	}

	metrics.Get().ItinerariesBuiltTotal.Add(ctx, 1)
	metrics.Get().BuildDurationSeconds.Record(ctx, time.Since(buildStart).Seconds())
	span.SetAttributes(attribute.Int("days.count", len(days)))
	span.SetStatus(codes.Ok, "Itinerary built")
	return result, nil
}

// narrate asks the generative collaborator for a summary and degrades
// to deterministic text on any failure.
func (s *ServiceImpl) narrate(ctx context.Context, prefs types.TravelerPrefs, totalDays int) (string, []string, []string) {
	destinations := strings.Join(prefs.Destinations, ", ")
	fallbackSummary := fmt.Sprintf("%d-day trip covering %s.", totalDays, destinations)

	if s.narrator == nil {
		return fallbackSummary,
			[]string{"AI summary unavailable, using fallback description."},
			[]string{"Narrative generation disabled."}
	}

	narrative, err := s.narrator.GenerateNarrative(ctx, generativeAI.NarrativeParams{
		Origin:       prefs.Origin,
		Destination:  destinations,
		StartDate:    prefs.StartDate.Format("2006-01-02"),
		EndDate:      prefs.EndDate.Format("2006-01-02"),
		TravelerType: prefs.TravelerType,
		BudgetTotal:  prefs.BudgetTotal,
		Interests:    prefs.Interests,
		Context:      "Multi-city travel plan with unique daily experiences and event blending.",
	})
	if err != nil || narrative == nil {
		s.logger.WarnContext(ctx, "Narrative generation failed, using fallback", slog.Any("error", err))
		metrics.Get().NarrativeFailsTotal.Add(ctx, 1)
		return fallbackSummary,
			[]string{"AI summary unavailable, using fallback description."},
			[]string{fmt.Sprintf("AI summary generation failed: %v", err)}
	}

	summary := narrative.SummaryText
	if summary == "" {
		summary = fallbackSummary
	}
	commentary := narrative.AICommentary
	if commentary == "" {
		commentary = "Generated via AI summarization."
	}
	return summary, narrative.Highlights, []string{commentary}
}
