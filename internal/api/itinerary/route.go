package itinerary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BHUWON12/ztraveler/internal/types"
)

// Hub cities tried in order when no direct flight exists. International
// entry/exit legs route through Gulf hubs; domestic hops through the
// major Saudi cities.
var (
	internationalHubs = []string{"Dubai", "Doha", "Abu Dhabi"}
	domesticHubs      = []string{"Riyadh", "Jeddah", "Dammam"}
)

// fallbackLeg is the synthetic last-resort segment when neither direct
// nor hub routing finds flights. The economics are placeholders; the
// guarantee is that route planning never comes back empty.
type fallbackLeg struct {
	carrier         string
	price           float64
	durationMinutes int
}

var (
	internationalFallback = fallbackLeg{carrier: "Fallback Route", price: 1800, durationMinutes: 420}
	domesticFallback      = fallbackLeg{carrier: "Road Route", price: 300, durationMinutes: 360}
)

const flightSearchK = 5

func cheapestFlight(records []types.FlightRecord) *types.FlightRecord {
	if len(records) == 0 {
		return nil
	}
	best := records[0]
	for _, f := range records[1:] {
		if f.Price < best.Price {
			best = f
		}
	}
	return &best
}

func segmentFromFlight(f types.FlightRecord) types.FlightSegment {
	airline := f.Airline
	if airline == "" {
		airline = "Unknown Airline"
	}
	return types.FlightSegment{
		Airline:         airline,
		FromCity:        f.Origin,
		ToCity:          f.Destination,
		Price:           f.Price,
		DurationMinutes: f.DurationMinutes,
		Source:          f.Source,
	}
}

// planRoute resolves from → to as one or two flight segments: the
// cheapest direct flight, else the first hub with both legs available
// (each leg independently cheapest), else the synthetic fallback.
// The caller adds the returned prices to its running flights total, so
// routes must be planned sequentially within one build.
func (s *ServiceImpl) planRoute(ctx context.Context, from, to string, hubs []string, fb fallbackLeg) []types.FlightSegment {
	direct, err := s.inventory.SearchFlights(ctx, from, to, flightSearchK)
	if err != nil {
		s.logger.WarnContext(ctx, "Direct flight search failed", slog.Any("error", err))
	}
	if best := cheapestFlight(direct); best != nil {
		return []types.FlightSegment{segmentFromFlight(*best)}
	}

	for _, hub := range hubs {
		if strings.EqualFold(hub, from) || strings.EqualFold(hub, to) {
			continue
		}
		firstLeg, _ := s.inventory.SearchFlights(ctx, from, hub, flightSearchK)
		secondLeg, _ := s.inventory.SearchFlights(ctx, hub, to, flightSearchK)
		f1 := cheapestFlight(firstLeg)
		f2 := cheapestFlight(secondLeg)
		if f1 != nil && f2 != nil {
			return []types.FlightSegment{segmentFromFlight(*f1), segmentFromFlight(*f2)}
		}
	}

	s.logger.InfoContext(ctx, "No flights found, synthesizing fallback segment",
		slog.String("from", from), slog.String("to", to))
	return []types.FlightSegment{{
		Airline:         fb.carrier,
		FromCity:        from,
		ToCity:          to,
		Price:           fb.price,
		DurationMinutes: fb.durationMinutes,
	}}
}

func segmentsTotal(segments []types.FlightSegment) float64 {
	total := 0.0
	for _, seg := range segments {
		total += seg.Price
	}
	return total
}
