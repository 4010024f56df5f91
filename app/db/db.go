package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BHUWON12/ztraveler/config"
)

const defaultRetries = 5

// Init connects to MongoDB and returns the configured database handle.
// MONGO_URI / MONGO_DB env vars override the file config.
func Init(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Database, error) {
	uri := cfg.Repositories.Mongo.URI
	if env := os.Getenv("MONGO_URI"); env != "" {
		uri = env
	}
	dbName := cfg.Repositories.Mongo.DB
	if env := os.Getenv("MONGO_DB"); env != "" {
		dbName = env
	}
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is not configured")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	logger.Info("MongoDB client connected", slog.String("db", dbName))
	return client.Database(dbName), nil
}

// WaitForDB pings the Mongo deployment until it responds or the retry
// budget runs out.
func WaitForDB(ctx context.Context, db *mongo.Database, logger *slog.Logger) bool {
	maxAttempts := defaultRetries
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.Client().Ping(pingCtx, nil)
		cancel()
		if err == nil {
			logger.InfoContext(ctx, "Database connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.WarnContext(ctx, "Database ping failed, retrying...",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("wait_duration", waitDuration),
			slog.String("error", err.Error()),
		)
		if attempts < maxAttempts {
			time.Sleep(waitDuration)
		}
	}
	logger.ErrorContext(ctx, "Database connection failed after multiple retries")
	return false
}

// Close disconnects the underlying client.
func Close(ctx context.Context, db *mongo.Database, logger *slog.Logger) {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(disconnectCtx); err != nil {
		logger.Error("Failed to disconnect MongoDB client", slog.Any("error", err))
	}
}
