// Package main is the entry point for the recommendation API server.
//
// It loads configuration, connects to PostgreSQL, loads the per-category
// model artifacts into memory, builds the HTTP server with the core chassis
// (middleware, routing, health checks), and starts listening. A missing or
// malformed artifact degrades that category to absent; it never blocks
// startup.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/api/handlers"
	"aitendule/internal/config"
	"aitendule/internal/core"
	"aitendule/internal/db"
	"aitendule/internal/external"
	"aitendule/internal/feature"
	"aitendule/internal/model"
	"aitendule/internal/recommend"
	"aitendule/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
		"model_dir", cfg.Model.Dir,
	)

	ctx := context.Background()

	// Database.
	pool, err := db.NewPool(ctx,
		cfg.Database.URL.Unmask(),
		cfg.Database.MaxConns,
		cfg.Database.MinConns,
		cfg.Database.MaxConnLifetime,
	)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	// Feature encoding and model registry. TempBinWidth must match the
	// value the artifacts were trained with.
	encoder, err := feature.NewEncoder(cfg.Model.TempBinWidth)
	if err != nil {
		return fmt.Errorf("creating feature encoder: %w", err)
	}

	registry := model.NewRegistry(cfg.Model.Dir, logger)
	registry.LoadAll(types.KnownCategories())
	logger.Info("model registry loaded", "categories", len(registry.Loaded()))

	recommender, err := recommend.NewService(registry, encoder, logger)
	if err != nil {
		return fmt.Errorf("creating recommendation service: %w", err)
	}

	// External providers. Weather is required; advice and imagery are
	// optional and wired only when their keys are configured.
	weatherClient := external.NewWeatherClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		external.WeatherClientConfig{
			APIKey:  cfg.Weather.APIKey,
			BaseURL: cfg.Weather.BaseURL,
			Logger:  logger,
		},
	)

	var adviser handlers.RecAdviceProvider
	if cfg.Advice.GeminiAPIKey.IsSet() {
		adviser = external.NewGeminiClient(
			&http.Client{Timeout: cfg.Advice.Timeout},
			external.GeminiClientConfig{
				APIKey:  cfg.Advice.GeminiAPIKey,
				BaseURL: cfg.Advice.GeminiBaseURL,
				Model:   cfg.Advice.GeminiModel,
				Logger:  logger,
			},
		)
	}

	var images handlers.RecImageProvider
	if cfg.Advice.PixabayAPIKey.IsSet() {
		images = external.NewPixabayClient(
			&http.Client{Timeout: cfg.Advice.Timeout},
			external.PixabayClientConfig{
				APIKey:  cfg.Advice.PixabayAPIKey,
				BaseURL: cfg.Advice.PixabayURL,
				Logger:  logger,
			},
		)
	}

	// Repositories.
	userRepo := db.NewUserRepository(pool)
	locationRepo := db.NewLocationRepository(pool)
	clothingRepo := db.NewClothingRepository(pool)
	cityRepo := db.NewCityRepository(pool)
	txManager := db.NewTxManager(pool)

	// Server and routes.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	srv.HealthProbes = []core.HealthProbe{
		core.ProbeFunc{ProbeName: "database", Fn: pool.Ping},
	}

	authHandler := handlers.NewAuthHandler(userRepo, srv.Validator, logger)
	recHandler := handlers.NewRecommendationHandler(
		locationRepo, weatherClient, recommender, adviser, images, logger)
	choiceHandler := handlers.NewChoiceHandler(clothingRepo, txManager, srv.Validator, logger)
	itemsHandler := handlers.NewItemsHandler(clothingRepo, logger)
	locationHandler := handlers.NewLocationHandler(locationRepo, logger)
	cityHandler := handlers.NewCityHandler(cityRepo, srv.Validator, logger)

	srv.RouteRegistrars = []func(chi.Router){
		authHandler.RegisterRoutes,
		recHandler.RegisterRoutes,
		choiceHandler.RegisterRoutes,
		itemsHandler.RegisterRoutes,
		locationHandler.RegisterRoutes,
		cityHandler.RegisterRoutes,
	}

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
