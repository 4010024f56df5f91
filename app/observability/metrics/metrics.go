package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItinerariesBuiltTotal metric.Int64Counter
	BuildDurationSeconds  metric.Float64Histogram
	VectorFallbackTotal   metric.Int64Counter
	NarrativeFailsTotal   metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments only once,
// using whatever MeterProvider is globally configured. With no provider
// installed (tests) the instruments are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ztraveler")
		var err error
		m := &AppMetrics{}

		m.ItinerariesBuiltTotal, err = meter.Int64Counter(
			"itineraries_built_total",
			metric.WithDescription("Total number of itineraries built"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itineraries_built_total: %v", err)
		}

		m.BuildDurationSeconds, err = meter.Float64Histogram(
			"itinerary_build_duration_seconds",
			metric.WithDescription("Duration of itinerary builds in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_build_duration_seconds: %v", err)
		}

		m.VectorFallbackTotal, err = meter.Int64Counter(
			"inventory_vector_fallback_total",
			metric.WithDescription("Retrievals that fell back to the document store"),
			metric.WithUnit("{retrieval}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create inventory_vector_fallback_total: %v", err)
		}

		m.NarrativeFailsTotal, err = meter.Int64Counter(
			"narrative_failures_total",
			metric.WithDescription("Narrative generations that used the fallback text"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create narrative_failures_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance,
// initializing lazily so library code never has to nil-check.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
