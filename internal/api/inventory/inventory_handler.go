package inventory

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/BHUWON12/ztraveler/internal/api"
	"github.com/BHUWON12/ztraveler/internal/types"
)

type Handler struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// GetCityExperiences handles GET /experiences?city=&interests= with a
// hybrid semantic search across attractions, events and hotels.
func (h *Handler) GetCityExperiences(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GetCityExperiences").Start(r.Context(), "GetCityExperiences", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/experiences"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetCityExperiences"))

	city := types.NormalizePlace(r.URL.Query().Get("city"))
	if city == "" {
		l.ErrorContext(ctx, "Missing city query parameter")
		api.ErrorResponse(w, r, http.StatusBadRequest, "city query parameter is required")
		return
	}

	var interests []string
	if raw := r.URL.Query().Get("interests"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				interests = append(interests, part)
			}
		}
	}

	results, err := h.repo.SearchCityExperiences(ctx, city, interests, 5)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search city experiences", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search experiences")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"city":    city,
		"results": results,
	})
}
