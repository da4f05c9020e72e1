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

	appLogger "github.com/FACorreiaa/go-places-recommender/app/logger"
	"github.com/FACorreiaa/go-places-recommender/app/observability/metrics"
	"github.com/FACorreiaa/go-places-recommender/app/tracer"
	"github.com/FACorreiaa/go-places-recommender/config"
	"github.com/FACorreiaa/go-places-recommender/internal/api/places"
	"github.com/FACorreiaa/go-places-recommender/internal/catalog"
	"github.com/FACorreiaa/go-places-recommender/internal/ranking"
	api "github.com/FACorreiaa/go-places-recommender/internal/router"
	"github.com/FACorreiaa/go-places-recommender/internal/similarity"
	"github.com/FACorreiaa/go-places-recommender/internal/vectorizer"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger) // Set globally after initialization

	// --- Observability ---
	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Engine Build ---
	// The catalog and derived vector space are built exactly once, before any
	// query is served; everything after this point is read-only.
	store, err := catalog.LoadFile(cfg.Catalog.Path, logger)
	if err != nil {
		logger.Error("Failed to load catalog", slog.Any("error", err))
		os.Exit(1)
	}

	space, err := vectorizer.Build(store.Places(), logger)
	if err != nil {
		logger.Error("Failed to build vector space", slog.Any("error", err))
		os.Exit(1)
	}

	index := similarity.NewIndex(space, store.Len())
	engine := ranking.New(store, space, index, ranking.Config{
		SimilarityFloor:  cfg.Engine.SimilarityFloor,
		SimilarityWeight: cfg.Engine.SimilarityWeight,
	}, logger)

	// --- Dependency Injection ---
	placesService := places.NewServiceImpl(store, space, index, engine, places.Options{
		DefaultFeedSize: cfg.Engine.FeedPageSize,
		MaxPageSize:     cfg.Engine.MaxPageSize,
		SearchLimit:     cfg.Engine.SearchLimit,
		SimilarPlacesK:  cfg.Engine.SimilarPlaces,
		AutocompleteCap: cfg.Engine.AutocompleteLimit,
		MinPrefixLen:    cfg.Engine.MinPrefixLength,
		CacheTTL:        cfg.Engine.CacheTTL,
	}, logger)
	placesHandler := places.NewHandler(placesService, logger)

	// --- Router Setup ---
	routerConfig := &api.Config{
		PlacesHandler: placesHandler,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux() // Use NewMux for Chi v5
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger)) // slog request middleware
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json")) // Compress JSON responses
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError), // Pipe server errors to slog
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel() // Trigger shutdown if server fails unexpectedly
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done() // Block until context is cancelled (Ctrl+C, SIGTERM)

	// --- Graceful Shutdown ---
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

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)") // Use standard log before slog default is set
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
