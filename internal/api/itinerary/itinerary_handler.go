package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/BHUWON12/ztraveler/internal/api"
	"github.com/BHUWON12/ztraveler/internal/types"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// BuildItinerary handles POST /itinerary. Invalid input returns 400;
// once input validates the build cannot fail short of an internal fault.
func (h *Handler) BuildItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BuildItinerary").Start(r.Context(), "BuildItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "BuildItinerary"))
	l.DebugContext(ctx, "Build itinerary handler invoked")

	var prefs types.TravelerPrefs
	if err := api.DecodeJSONBody(w, r, &prefs); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.BuildItinerary(ctx, prefs)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, types.ErrInvalidInput) {
			l.WarnContext(ctx, "Invalid itinerary request", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to build itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build itinerary")
		return
	}

	l.InfoContext(ctx, "Itinerary built",
		slog.String("trip_id", result.TripID),
		slog.Int("days", len(result.Days)),
	)
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
