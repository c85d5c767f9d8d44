package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rutaflow/internal/app"
	"rutaflow/internal/assistant"
	"rutaflow/internal/config"
	"rutaflow/internal/handler"
	"rutaflow/internal/logger"
	"rutaflow/internal/middleware"
	"rutaflow/internal/profit"
	internalRedis "rutaflow/internal/redis"
	"rutaflow/internal/repository/postgres"
	"rutaflow/internal/service"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	// Load configuration.
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg, log)

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *logger.Logger) *http.Server {
	loc := cfg.Stats.Location()

	// Initialize Redis stores.
	shiftStore := internalRedis.NewShiftStore(redisClient, cfg.Redis.ShiftTTL)
	lockStore := internalRedis.NewLockStore(redisClient)
	locationStore := internalRedis.NewLocationStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Redis.SettingsTTL)
	idempotencyStore := internalRedis.NewIdempotencyStore(redisClient, cfg.Redis.IdempotencyTTL, cfg.Redis.IdempotencyPendingTTL)

	// Initialize repositories.
	transactor := postgres.NewTransactor(db)
	driverRepo := postgres.NewDriverRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	shiftRepo := postgres.NewShiftRepository(db)
	tripRepo := postgres.NewTripRepository(db)

	calc := profit.NewCalculator(profit.Policy{
		AcceptableRatio:   cfg.Profit.AcceptableRatio,
		WorkdayHours:      cfg.Profit.WorkdayHours,
		DefaultPeriodDays: cfg.Profit.DefaultPeriodDays,
		DefaultKmPerLiter: cfg.Profit.DefaultKmPerLiter,
	})

	assistantClient := assistant.NewMessagesClient(assistant.Options{
		BaseURL: cfg.Assistant.BaseURL,
		APIKey:  cfg.Assistant.APIKey,
		Model:   cfg.Assistant.Model,
		Timeout: cfg.Assistant.Timeout,
	})

	// Initialize services.
	notificationService := service.NewNotificationService(log)
	settingsService := service.NewSettingsService(settingsRepo, cacheStore, notificationService, log)
	driverService := service.NewDriverService(driverRepo, settingsRepo)
	tripService := service.NewTripService(tripRepo, shiftRepo, settingsService, notificationService, calc, loc, log)
	receiptService := service.NewReceiptService(tripService)
	exportService := service.NewExportService(tripService)
	statsService := service.NewStatsService(tripRepo, shiftRepo, settingsService, calc, loc, cfg.Stats.WindowDays)
	shiftService := service.NewShiftService(service.ShiftServiceDeps{
		Transactor:          transactor,
		ShiftRepo:           shiftRepo,
		TripRepo:            tripRepo,
		SettingsService:     settingsService,
		NotificationService: notificationService,
		Store:               shiftStore,
		Locks:               lockStore,
		Locations:           locationStore,
		Calculator:          calc,
		NoiseThresholdKm:    cfg.GPS.NoiseThresholdKm,
		Location:            loc,
		Logger:              log,
	})
	assistantService := service.NewAssistantService(assistantClient, statsService, settingsService, notificationService, service.AssistantOptions{
		WindowDays:     cfg.Assistant.WindowDays,
		ChatMaxTokens:  cfg.Assistant.ChatMaxTokens,
		PhotoMaxTokens: cfg.Assistant.PhotoMaxTokens,
	}, log)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		DriverHandler:    handler.NewDriverHandler(driverService),
		SettingsHandler:  handler.NewSettingsHandler(settingsService),
		TripHandler:      handler.NewTripHandler(tripService, receiptService, exportService),
		ShiftHandler:     handler.NewShiftHandler(shiftService),
		StatsHandler:     handler.NewStatsHandler(statsService),
		AssistantHandler: handler.NewAssistantHandler(assistantService),
		Idempotency:      idempotencyStore,
		NewRelicApp:      nrApp,
		Logger:           log,
	})

	// The app is served from a different origin than the API.
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.IdempotencyHeader, middleware.DriverIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.ReplayedHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsHandler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
