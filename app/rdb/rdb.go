package rdb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BHUWON12/ztraveler/config"
)

// RediSearch index names and key prefixes, one pair per inventory
// category.
const (
	IdxHotels     = "idx:hotels"
	IdxAttraction = "idx:attractions"
	IdxEvents     = "idx:events"
	IdxFlights    = "idx:flights"
	IdxTransports = "idx:transports"

	PfxHotel     = "hotel:"
	PfxAttr      = "attraction:"
	PfxEvent     = "event:"
	PfxFlight    = "flight:"
	PfxTransport = "transport:"

	// EmbeddingField is the hash field holding the FLOAT32 vector.
	EmbeddingField = "embedding"
	// EmbeddingDim is the vector dimensionality shared by the indexes
	// and the embedding function.
	EmbeddingDim = 384
)

// Init connects to Redis Stack. REDIS_URL overrides the file config.
func Init(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	url := cfg.Repositories.Redis.URL
	if env := os.Getenv("REDIS_URL"); env != "" {
		url = env
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Info("Redis client connected", slog.String("addr", opt.Addr))
	return client, nil
}

func vectorField() *redis.FieldSchema {
	return &redis.FieldSchema{
		FieldName: EmbeddingField,
		FieldType: redis.SearchFieldTypeVector,
		VectorArgs: &redis.FTVectorArgs{
			FlatOptions: &redis.FTFlatOptions{
				Type:           "FLOAT32",
				Dim:            EmbeddingDim,
				DistanceMetric: "COSINE",
			},
		},
	}
}

func createIndex(ctx context.Context, client *redis.Client, logger *slog.Logger, index, prefix string, schema ...*redis.FieldSchema) error {
	err := client.FTCreate(ctx, index,
		&redis.FTCreateOptions{OnHash: true, Prefix: []interface{}{prefix}},
		schema...,
	).Err()
	if err != nil {
		if strings.Contains(err.Error(), "Index already exists") {
			logger.Debug("Search index already exists", slog.String("index", index))
			return nil
		}
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	logger.Info("Created search index", slog.String("index", index))
	return nil
}

// EnsureIndexes creates the five per-category vector indexes if they do
// not exist yet. Safe to call on every startup.
func EnsureIndexes(ctx context.Context, client *redis.Client, logger *slog.Logger) error {
	if err := createIndex(ctx, client, logger, IdxHotels, PfxHotel,
		&redis.FieldSchema{FieldName: "cityName", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "hotelName", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "price", FieldType: redis.SearchFieldTypeNumeric},
		&redis.FieldSchema{FieldName: "rating", FieldType: redis.SearchFieldTypeNumeric},
		&redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText},
		vectorField(),
	); err != nil {
		return err
	}

	if err := createIndex(ctx, client, logger, IdxAttraction, PfxAttr,
		&redis.FieldSchema{FieldName: "id", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "cityName", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "name", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "category", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "entry_fee", FieldType: redis.SearchFieldTypeNumeric},
		&redis.FieldSchema{FieldName: "rating", FieldType: redis.SearchFieldTypeNumeric},
		&redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText},
		vectorField(),
	); err != nil {
		return err
	}

	if err := createIndex(ctx, client, logger, IdxEvents, PfxEvent,
		&redis.FieldSchema{FieldName: "id", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "cityName", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "name", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "type", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "date", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText},
		vectorField(),
	); err != nil {
		return err
	}

	if err := createIndex(ctx, client, logger, IdxFlights, PfxFlight,
		&redis.FieldSchema{FieldName: "origin", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "destination", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "airline", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "price", FieldType: redis.SearchFieldTypeNumeric},
		&redis.FieldSchema{FieldName: "duration_minutes", FieldType: redis.SearchFieldTypeNumeric},
		vectorField(),
	); err != nil {
		return err
	}

	return createIndex(ctx, client, logger, IdxTransports, PfxTransport,
		&redis.FieldSchema{FieldName: "cityName", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "mode", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "provider", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "price", FieldType: redis.SearchFieldTypeNumeric},
		&redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText},
		vectorField(),
	)
}
