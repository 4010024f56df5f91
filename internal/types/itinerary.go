package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidInput marks request validation failures so the handler can
// map them to a 400 instead of a 500.
var ErrInvalidInput = errors.New("invalid itinerary request")

var titleCaser = cases.Title(language.English)

// Date is a calendar day serialized as "2006-01-02".
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// TravelerPrefs is the itinerary build request. Immutable once validated.
type TravelerPrefs struct {
	Origin       string   `json:"origin,omitempty"`
	Destinations []string `json:"destination"`
	StartDate    Date     `json:"start_date"`
	EndDate      Date     `json:"end_date"`
	BudgetTotal  float64  `json:"budget_total"`
	Interests    []string `json:"interests"`
	TravelerType string   `json:"traveler_type,omitempty"`
}

// Normalize trims and title-cases place names so they match the
// cityName tags stored in the indexes.
func (p *TravelerPrefs) Normalize() {
	p.Origin = NormalizePlace(p.Origin)
	for i, d := range p.Destinations {
		p.Destinations[i] = NormalizePlace(d)
	}
	if p.TravelerType == "" {
		p.TravelerType = "solo"
	}
}

func NormalizePlace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return titleCaser.String(strings.ToLower(s))
}

func (p TravelerPrefs) Validate() error {
	if len(p.Destinations) == 0 {
		return fmt.Errorf("%w: no destinations provided", ErrInvalidInput)
	}
	for _, d := range p.Destinations {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("%w: empty destination name", ErrInvalidInput)
		}
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}
	if p.EndDate.Before(p.StartDate.Time) {
		return fmt.Errorf("%w: end_date must be on/after start_date", ErrInvalidInput)
	}
	if p.BudgetTotal <= 0 {
		return fmt.Errorf("%w: budget_total must be positive", ErrInvalidInput)
	}
	return nil
}

// TotalDays counts calendar days in the trip span, inclusive.
func (p TravelerPrefs) TotalDays() int {
	return int(p.EndDate.Sub(p.StartDate.Time).Hours()/24) + 1
}

type Hotel struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	City          string  `json:"city"`
	PricePerNight float64 `json:"price_per_night"`
	Rating        float64 `json:"rating,omitempty"`
	Source        string  `json:"source,omitempty"`
}

type Activity struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	City         string  `json:"city"`
	Category     string  `json:"category,omitempty"`
	EntryFee     float64 `json:"entry_fee"`
	DurationMin  int     `json:"duration_min,omitempty"`
	BestTimeHint string  `json:"best_time_hint,omitempty"`
	Source       string  `json:"source,omitempty"`
}

type TransportSegment struct {
	Mode      string  `json:"mode"`
	Provider  string  `json:"provider,omitempty"`
	FromPlace string  `json:"from_place"`
	ToPlace   string  `json:"to_place"`
	Price     float64 `json:"price"`
	Source    string  `json:"source,omitempty"`
}

type FlightSegment struct {
	Airline         string  `json:"airline"`
	FromCity        string  `json:"from_city"`
	ToCity          string  `json:"to_city"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Source          string  `json:"source,omitempty"`
}

// DayPlan is one day of the trip. DayIndex is 1-based and globally
// sequential across cities and travel days.
type DayPlan struct {
	DayIndex          int                `json:"day_index"`
	City              string             `json:"city"`
	Hotel             *Hotel             `json:"hotel,omitempty"`
	Activities        []Activity         `json:"activities"`
	TransportSegments []TransportSegment `json:"transport_segments"`
	Flight            *FlightSegment     `json:"flight,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	EstimatedDayCost  float64            `json:"estimated_day_cost"`
}

// TripCost doubles as the budget allocation shape and the final spend
// breakdown. In the final itinerary Total always equals the sum of the
// four subtotals, not the pre-allocated split.
type TripCost struct {
	HotelTotal      float64 `json:"hotel_total"`
	ActivitiesTotal float64 `json:"activities_total"`
	TransportTotal  float64 `json:"transport_total"`
	FlightsTotal    float64 `json:"flights_total"`
	Total           float64 `json:"total"`
}

type Itinerary struct {
	TripID      string    `json:"trip_id"`
	SummaryText string    `json:"summary_text"`
	Highlights  []string  `json:"highlights"`
	Days        []DayPlan `json:"days"`
	Cost        TripCost  `json:"cost"`
	Assumptions []string  `json:"assumptions"`
}

// Narrative is the structured output of the generative summary step.
type Narrative struct {
	SummaryText  string   `json:"summary_text"`
	Highlights   []string `json:"highlights"`
	AICommentary string   `json:"ai_commentary,omitempty"`
}
