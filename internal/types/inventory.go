package types

// Provenance of a normalized inventory record.
const (
	SourceVector   = "vector"
	SourceFallback = "fallback-store"
)

// HotelRecord is a hotel candidate normalized at the retriever
// boundary, regardless of which backend produced it.
type HotelRecord struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
	Source string  `json:"source"`
}

// ActivityRecord covers both attractions and events so the selection
// engine can pool them.
type ActivityRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	City     string  `json:"city"`
	Category string  `json:"category"`
	Fee      float64 `json:"fee"`
	Rating   float64 `json:"rating"`
	Source   string  `json:"source"`
}

type FlightRecord struct {
	ID              string  `json:"id"`
	Airline         string  `json:"airline"`
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	Source          string  `json:"source"`
}

type TransportRecord struct {
	ID       string  `json:"id"`
	Mode     string  `json:"mode"`
	Provider string  `json:"provider"`
	City     string  `json:"city"`
	Price    float64 `json:"price"`
	Source   string  `json:"source"`
}

// ExperienceRecord is a hybrid search hit across attractions, events
// and hotels for a city.
type ExperienceRecord struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"` // attraction, event or hotel
	Name     string  `json:"name"`
	City     string  `json:"city"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Source   string  `json:"source"`
}
