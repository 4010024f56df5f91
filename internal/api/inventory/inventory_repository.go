package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/BHUWON12/ztraveler/app/observability/metrics"
	"github.com/BHUWON12/ztraveler/app/rdb"
	"github.com/BHUWON12/ztraveler/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository retrieves candidate inventory for the planner. Every
// method prefers the vector index and falls back to the document store
// when the index errors or comes back empty; backend failures are
// absorbed and surface as empty result sets.
type Repository interface {
	SearchHotels(ctx context.Context, city string, maxPrice float64, k int) ([]types.HotelRecord, error)
	SearchAttractions(ctx context.Context, city string, interests []string, k int) ([]types.ActivityRecord, error)
	SearchEvents(ctx context.Context, city, startISO, endISO string, k int) ([]types.ActivityRecord, error)
	SearchFlights(ctx context.Context, origin, destination string, k int) ([]types.FlightRecord, error)
	SearchTransports(ctx context.Context, city string, k int) ([]types.TransportRecord, error)
	SearchCityExperiences(ctx context.Context, city string, interests []string, kEach int) ([]types.ExperienceRecord, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	rdb    *redis.Client
	db     *mongo.Database
	cache  *gocache.Cache
}

func NewRepositoryImpl(rdbClient *redis.Client, db *mongo.Database, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		rdb:    rdbClient,
		db:     db,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

const (
	vectorSearchTimeout = 3 * time.Second
	fallbackTimeout     = 5 * time.Second
)

var querySpecialChars = regexp.MustCompile(`[,.<>{}\[\]"':;!@#$%^&*()\-=+~|/\\]`)

// escapeQueryText strips characters that have meaning in the RediSearch
// query syntax so user input cannot break the filter expression.
func escapeQueryText(value string) string {
	return strings.TrimSpace(querySpecialChars.ReplaceAllString(value, " "))
}

// knnSearch runs a filtered KNN query against one index and returns the
// raw document fields. Errors are logged and collapse to no results so
// the caller always proceeds to the fallback path.
func (r *RepositoryImpl) knnSearch(ctx context.Context, index, filter, queryText string, k int, excludeIDs []string, returnFields []string) []map[string]string {
	base := filter
	if base == "" {
		base = "*"
	}
	if len(excludeIDs) > 0 {
		var sb strings.Builder
		sb.WriteString("(" + base + ")")
		for _, id := range excludeIDs {
			sb.WriteString(" -@id:{" + escapeQueryText(id) + "}")
		}
		base = sb.String()
	}
	query := fmt.Sprintf("%s=>[KNN %d @%s $vec AS score]", base, k, rdb.EmbeddingField)

	ret := make([]redis.FTSearchReturn, 0, len(returnFields)+1)
	for _, f := range returnFields {
		ret = append(ret, redis.FTSearchReturn{FieldName: f})
	}
	ret = append(ret, redis.FTSearchReturn{FieldName: "score"})

	searchCtx, cancel := context.WithTimeout(ctx, vectorSearchTimeout)
	defer cancel()

	res, err := r.rdb.FTSearchWithArgs(searchCtx, index, query, &redis.FTSearchOptions{
		SortBy:         []redis.FTSearchSortBy{{FieldName: "score", Asc: true}},
		LimitOffset:    0,
		Limit:          k,
		Return:         ret,
		Params:         map[string]interface{}{"vec": string(VectorBlob(Embed(queryText)))},
		DialectVersion: 2,
	}).Result()
	if err != nil {
		r.logger.WarnContext(ctx, "Vector search failed, will fall back",
			slog.String("index", index), slog.Any("error", err))
		return nil
	}

	docs := make([]map[string]string, 0, len(res.Docs))
	for _, d := range res.Docs {
		fields := make(map[string]string, len(d.Fields)+1)
		for k, v := range d.Fields {
			fields[k] = v
		}
		if _, ok := fields["id"]; !ok {
			fields["id"] = d.ID
		}
		docs = append(docs, fields)
	}
	return docs
}

// fallbackFind queries the document store with a case-insensitive exact
// match and reports the fallback to metrics.
func (r *RepositoryImpl) fallbackFind(ctx context.Context, collection string, filter bson.M, k int) []bson.M {
	metrics.Get().VectorFallbackTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", collection)))

	findCtx, cancel := context.WithTimeout(ctx, fallbackTimeout)
	defer cancel()

	cursor, err := r.db.Collection(collection).Find(findCtx, filter,
		options.Find().SetLimit(int64(k)))
	if err != nil {
		r.logger.ErrorContext(ctx, "Document store fallback failed",
			slog.String("collection", collection), slog.Any("error", err))
		return nil
	}
	var docs []bson.M
	if err := cursor.All(findCtx, &docs); err != nil {
		r.logger.ErrorContext(ctx, "Document store cursor read failed",
			slog.String("collection", collection), slog.Any("error", err))
		return nil
	}
	return docs
}

func cityFilter(city string) bson.M {
	return bson.M{"cityName": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(city) + "$", Options: "i",
	}}
}

func (r *RepositoryImpl) SearchHotels(ctx context.Context, city string, maxPrice float64, k int) ([]types.HotelRecord, error) {
	ctx, span := otel.Tracer("InventoryRepository").Start(ctx, "SearchHotels")
	defer span.End()

	cacheKey := fmt.Sprintf("hotels|%s|%.0f|%d", city, maxPrice, k)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]types.HotelRecord), nil
	}

	safeCity := escapeQueryText(city)
	docs := r.knnSearch(ctx, rdb.IdxHotels,
		fmt.Sprintf("@cityName:{%s}", safeCity),
		fmt.Sprintf("best hotels in %s under %d SAR", safeCity, int(maxPrice)),
		k, nil,
		[]string{"id", "hotelName", "cityName", "price", "rating"},
	)

	records := make([]types.HotelRecord, 0, k)
	for _, d := range docs {
		records = append(records, types.HotelRecord{
			ID:     d["id"],
			Name:   d["hotelName"],
			City:   d["cityName"],
			Price:  parseFloat(d["price"]),
			Rating: parseFloat(d["rating"]),
			Source: types.SourceVector,
		})
	}

	if len(records) == 0 {
		for _, d := range r.fallbackFind(ctx, "hotels", cityFilter(city), k) {
			records = append(records, types.HotelRecord{
				ID:     docID(d),
				Name:   docString(d, "hotelName"),
				City:   docString(d, "cityName"),
				Price:  docFloat(d, "price"),
				Rating: docFloat(d, "rating"),
				Source: types.SourceFallback,
			})
		}
	}

	if len(records) > 0 {
		r.cache.Set(cacheKey, records, gocache.DefaultExpiration)
	}
	return records, nil
}

func (r *RepositoryImpl) SearchAttractions(ctx context.Context, city string, interests []string, k int) ([]types.ActivityRecord, error) {
	ctx, span := otel.Tracer("InventoryRepository").Start(ctx, "SearchAttractions")
	defer span.End()

	cacheKey := fmt.Sprintf("attractions|%s|%s|%d", city, strings.Join(interests, ","), k)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]types.ActivityRecord), nil
	}

	safeCity := escapeQueryText(city)
	intent := "top attractions"
	if len(interests) > 0 {
		intent = escapeQueryText(strings.Join(interests, ", "))
	}
	docs := r.knnSearch(ctx, rdb.IdxAttraction,
		fmt.Sprintf("@cityName:{%s}", safeCity),
		fmt.Sprintf("%s in %s best tourist spots", intent, safeCity),
		k, nil,
		[]string{"id", "name", "cityName", "category", "entry_fee", "rating"},
	)

	records := make([]types.ActivityRecord, 0, k)
	for _, d := range docs {
		records = append(records, types.ActivityRecord{
			ID:       d["id"],
			Name:     d["name"],
			City:     d["cityName"],
			Category: orDefault(d["category"], "general"),
			Fee:      parseFloat(d["entry_fee"]),
			Rating:   parseFloat(d["rating"]),
			Source:   types.SourceVector,
		})
	}

	if len(records) == 0 {
		for _, d := range r.fallbackFind(ctx, "attractions", cityFilter(city), k) {
			records = append(records, types.ActivityRecord{
				ID:       docID(d),
				Name:     docString(d, "name"),
				City:     docString(d, "cityName"),
				Category: orDefault(docString(d, "category"), "general"),
				Fee:      docFloat(d, "entry_fee"),
				Rating:   docFloat(d, "rating"),
				Source:   types.SourceFallback,
			})
		}
	}

	if len(records) > 0 {
		r.cache.Set(cacheKey, records, gocache.DefaultExpiration)
	}
	return records, nil
}

func (r *RepositoryImpl) SearchEvents(ctx context.Context, city, startISO, endISO string, k int) ([]types.ActivityRecord, error) {
	ctx, span := otel.Tracer("InventoryRepository").Start(ctx, "SearchEvents")
	defer span.End()

	safeCity := escapeQueryText(city)
	docs := r.knnSearch(ctx, rdb.IdxEvents,
		fmt.Sprintf("@cityName:{%s}", safeCity),
		fmt.Sprintf("events and festivals in %s between %s and %s", safeCity, startISO, endISO),
		k, nil,
		[]string{"id", "name", "cityName", "type", "price", "date"},
	)

	records := make([]types.ActivityRecord, 0, k)
	for _, d := range docs {
		records = append(records, types.ActivityRecord{
			ID:       d["id"],
			Name:     d["name"],
			City:     d["cityName"],
			Category: orDefault(d["type"], "general"),
			Fee:      parseFloat(d["price"]),
			Source:   types.SourceVector,
		})
	}

	if len(records) == 0 {
		for _, d := range r.fallbackFind(ctx, "events", cityFilter(city), k) {
			records = append(records, types.ActivityRecord{
				ID:       docID(d),
				Name:     docString(d, "name"),
				City:     docString(d, "cityName"),
				Category: orDefault(docString(d, "type"), "general"),
				Fee:      docFloat(d, "price"),
				Source:   types.SourceFallback,
			})
		}
	}
	return records, nil
}

func (r *RepositoryImpl) SearchFlights(ctx context.Context, origin, destination string, k int) ([]types.FlightRecord, error) {
	ctx, span := otel.Tracer("InventoryRepository").Start(ctx, "SearchFlights")
	defer span.End()

	cacheKey := fmt.Sprintf("flights|%s|%s|%d", origin, destination, k)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]types.FlightRecord), nil
	}

	safeOrigin := escapeQueryText(origin)
	safeDest := escapeQueryText(destination)
	docs := r.knnSearch(ctx, rdb.IdxFlights,
		fmt.Sprintf("@origin:{%s} @destination:{%s}", safeOrigin, safeDest),
		fmt.Sprintf("direct flights from %s to %s", safeOrigin, safeDest),
		k, nil,
		[]string{"id", "airline", "origin", "destination", "price", "duration_minutes"},
	)

	records := make([]types.FlightRecord, 0, k)
	for _, d := range docs {
		records = append(records, types.FlightRecord{
			ID:              d["id"],
			Airline:         d["airline"],
			Origin:          d["origin"],
			Destination:     d["destination"],
			Price:           parseFloat(d["price"]),
			DurationMinutes: int(parseFloat(d["duration_minutes"])),
			Source:          types.SourceVector,
		})
	}

	if len(records) == 0 {
		filter := bson.M{
			"origin":      primitive.Regex{Pattern: "^" + regexp.QuoteMeta(origin) + "$", Options: "i"},
			"destination": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(destination) + "$", Options: "i"},
		}
		for _, d := range r.fallbackFind(ctx, "flights", filter, k) {
			records = append(records, types.FlightRecord{
				ID:              docID(d),
				Airline:         docString(d, "airline"),
				Origin:          docString(d, "origin"),
				Destination:     docString(d, "destination"),
				Price:           docFloat(d, "price"),
				DurationMinutes: int(docFloat(d, "duration_minutes")),
				Source:          types.SourceFallback,
			})
		}
	}

	if len(records) > 0 {
		r.cache.Set(cacheKey, records, gocache.DefaultExpiration)
	}
	return records, nil
}

func (r *RepositoryImpl) SearchTransports(ctx context.Context, city string, k int) ([]types.TransportRecord, error) {
	ctx, span := otel.Tracer("InventoryRepository").Start(ctx, "SearchTransports")
	defer span.End()

	safeCity := escapeQueryText(city)
	docs := r.knnSearch(ctx, rdb.IdxTransports,
		fmt.Sprintf("@cityName:{%s}", safeCity),
		fmt.Sprintf("public and private transport options in %s", safeCity),
		k, nil,
		[]string{"id", "mode", "provider", "cityName", "price"},
	)

	records := make([]types.TransportRecord, 0, k)
	for _, d := range docs {
		records = append(records, types.TransportRecord{
			ID:       d["id"],
			Mode:     orDefault(d["mode"], "car"),
			Provider: orDefault(d["provider"], "Local Transport"),
			City:     d["cityName"],
			Price:    parseFloat(d["price"]),
			Source:   types.SourceVector,
		})
	}

	if len(records) == 0 {
		filter := bson.M{"$or": []bson.M{
			{"from_city": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(city) + "$", Options: "i"}},
			{"to_city": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(city) + "$", Options: "i"}},
			{"cityName": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(city) + "$", Options: "i"}},
		}}
		for _, d := range r.fallbackFind(ctx, "transports", filter, k) {
			records = append(records, types.TransportRecord{
				ID:       docID(d),
				Mode:     orDefault(docString(d, "mode"), "car"),
				Provider: orDefault(docString(d, "provider"), "Local Transport"),
				City:     docString(d, "cityName"),
				Price:    docFloat(d, "price"),
				Source:   types.SourceFallback,
			})
		}
	}
	return records, nil
}

// SearchCityExperiences is a hybrid semantic search across attractions,
// events and hotels for one city, deduplicated by id.
func (r *RepositoryImpl) SearchCityExperiences(ctx context.Context, city string, interests []string, kEach int) ([]types.ExperienceRecord, error) {
	ctx, span := otel.Tracer("InventoryRepository").Start(ctx, "SearchCityExperiences")
	defer span.End()

	safeCity := escapeQueryText(city)
	queryText := fmt.Sprintf("things to do, see and experience in %s related to %s",
		safeCity, strings.Join(interests, ", "))
	filter := fmt.Sprintf("@cityName:{%s}", safeCity)

	var results []types.ExperienceRecord
	for _, d := range r.knnSearch(ctx, rdb.IdxAttraction, filter, queryText, kEach, nil,
		[]string{"id", "name", "cityName", "category", "entry_fee", "rating"}) {
		results = append(results, types.ExperienceRecord{
			ID: d["id"], Kind: "attraction", Name: d["name"], City: d["cityName"],
			Category: d["category"], Price: parseFloat(d["entry_fee"]),
			Rating: parseFloat(d["rating"]), Source: types.SourceVector,
		})
	}
	for _, d := range r.knnSearch(ctx, rdb.IdxEvents, filter, queryText, kEach, nil,
		[]string{"id", "name", "cityName", "type", "price"}) {
		results = append(results, types.ExperienceRecord{
			ID: d["id"], Kind: "event", Name: d["name"], City: d["cityName"],
			Category: d["type"], Price: parseFloat(d["price"]), Source: types.SourceVector,
		})
	}
	for _, d := range r.knnSearch(ctx, rdb.IdxHotels, filter, queryText, kEach, nil,
		[]string{"id", "hotelName", "cityName", "price", "rating"}) {
		results = append(results, types.ExperienceRecord{
			ID: d["id"], Kind: "hotel", Name: d["hotelName"], City: d["cityName"],
			Price: parseFloat(d["price"]), Rating: parseFloat(d["rating"]),
			Source: types.SourceVector,
		})
	}

	seen := make(map[string]struct{}, len(results))
	unique := results[:0]
	for _, item := range results {
		key := item.ID
		if key == "" {
			key = item.Name
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}
	return unique, nil
}
