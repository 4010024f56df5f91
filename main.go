package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/BHUWON12/ztraveler/app/db"
	appLogger "github.com/BHUWON12/ztraveler/app/logger"
	"github.com/BHUWON12/ztraveler/app/observability/metrics"
	"github.com/BHUWON12/ztraveler/app/rdb"
	"github.com/BHUWON12/ztraveler/app/tracer"
	"github.com/BHUWON12/ztraveler/config"
	generativeAI "github.com/BHUWON12/ztraveler/internal/api/generative_ai"
	"github.com/BHUWON12/ztraveler/internal/api/inventory"
	"github.com/BHUWON12/ztraveler/internal/api/itinerary"
	api "github.com/BHUWON12/ztraveler/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Storage Backends ---
	mongoDB, err := database.Init(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize MongoDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(context.Background(), mongoDB, logger)

	if !database.WaitForDB(ctx, mongoDB, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	redisClient, err := rdb.Init(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	if err := rdb.EnsureIndexes(ctx, redisClient, logger); err != nil {
		// The document-store fallback still works without the indexes.
		logger.Warn("Failed to ensure search indexes, vector search degraded", slog.Any("error", err))
	}

	// --- Dependency Injection ---
	inventoryRepo := inventory.NewRepositoryImpl(redisClient, mongoDB, logger)
	inventoryHandler := inventory.NewHandler(inventoryRepo, logger)

	var narrator itinerary.Narrator
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Gemini.Model, logger)
	if err != nil {
		logger.Warn("Narrative client unavailable, itineraries will use fallback text", slog.Any("error", err))
	} else {
		narrator = aiClient
	}

	itineraryService := itinerary.NewServiceImpl(inventoryRepo, narrator, cfg.Planner, logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, logger)

	// --- Router Setup ---
	mainRouter := api.SetupRouter(&api.Config{
		ItineraryHandler: itineraryHandler,
		InventoryHandler: inventoryHandler,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		slog.InfoContext(r.Context(), "Root endpoint hit")
		w.Write([]byte("Welcome to ztraveler API"))
	})

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
