package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/adeelhaq/sinchai/internal/adapters/http"
	natsadapter "github.com/adeelhaq/sinchai/internal/adapters/nats"
	"github.com/adeelhaq/sinchai/internal/adapters/postgres"
	"github.com/adeelhaq/sinchai/internal/adapters/power"
	"github.com/adeelhaq/sinchai/internal/adapters/valkey"
	"github.com/adeelhaq/sinchai/internal/adapters/weather"
	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
	"github.com/adeelhaq/sinchai/internal/pkg/config"
	"github.com/adeelhaq/sinchai/internal/pkg/geospatial"
	"github.com/adeelhaq/sinchai/internal/pkg/logging"
	"github.com/adeelhaq/sinchai/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("sinchai-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("sinchai-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr, cfg.Telemetry.Enabled)
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	farmRepo := postgres.NewFarmRepo(db)
	fieldRepo := postgres.NewFieldRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	satStatRepo := postgres.NewSatelliteStatRepo(db)

	// External collaborators
	weatherSvc := weather.NewClient(cfg.Weather.OpenWeatherKey)
	soilSvc := power.NewClient()
	if cfg.Weather.PowerBaseURL != "" {
		soilSvc = power.NewClientWithBaseURL(cfg.Weather.PowerBaseURL)
	}

	policy := geospatial.AreaPolicy{
		MinAcres: cfg.Policy.MinAcres,
		MaxAcres: cfg.Policy.MaxAcres,
	}

	// Use cases
	farmSvc := usecases.NewFarmService(farmRepo)
	fieldSvc := usecases.NewFieldService(fieldRepo, cacheOrNil(cache), eventsOrNil(publisher), policy)
	recSvc := usecases.NewRecommendationService(fieldRepo, scheduleRepo, weatherSvc, soilSvc, cacheOrNil(cache), eventsOrNil(publisher))
	schedSvc := usecases.NewScheduleService(fieldRepo, scheduleRepo)

	deps := &http.Dependencies{
		Farms:           farmSvc,
		Fields:          fieldSvc,
		Recommendations: recSvc,
		Schedules:       schedSvc,
		SatStats:        satStatRepo,
		NATS:            natsConn,
		DB:              db,
		Cache:           cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Sinchai API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// cacheOrNil avoids handing the services a typed-nil interface.
func cacheOrNil(c *valkey.Cache) ports.CacheService {
	if c == nil {
		return nil
	}
	return c
}

func eventsOrNil(p *natsadapter.Publisher) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
