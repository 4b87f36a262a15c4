package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/adeelhaq/sinchai/internal/adapters/nats"
	"github.com/adeelhaq/sinchai/internal/adapters/postgres"
	"github.com/adeelhaq/sinchai/internal/adapters/power"
	"github.com/adeelhaq/sinchai/internal/adapters/weather"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
	"github.com/adeelhaq/sinchai/internal/pkg/config"
	"github.com/adeelhaq/sinchai/internal/pkg/logging"
	"github.com/adeelhaq/sinchai/internal/workflows"
)

// The advisor worker owns the slow path: when a recommendation comes back
// "processing" the API tells the client to re-poll, and this worker keeps
// recomputing in the background until the satellite reading lands, then
// pushes the ready result onto the broker.
func main() {
	cfg, err := config.Load("sinchai-advisor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("sinchai-advisor", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	fieldRepo := postgres.NewFieldRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	weatherSvc := weather.NewClient(cfg.Weather.OpenWeatherKey)
	soilSvc := power.NewClient()
	if cfg.Weather.PowerBaseURL != "" {
		soilSvc = power.NewClientWithBaseURL(cfg.Weather.PowerBaseURL)
	}

	recSvc := usecases.NewRecommendationService(fieldRepo, scheduleRepo, weatherSvc, soilSvc, nil, publisher)

	// Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.AdvisoryWorkflow)
	w.RegisterActivity(&workflows.AdvisoryActivities{
		Recommendations: recSvc,
		Events:          publisher,
	})

	// Kick off an advisory workflow for every newly drawn field.
	fieldCreated, err := natsadapter.NewSubscriber(cfg.NATS.URL, slog.Default())
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer fieldCreated.Close()

	if err := fieldCreated.SubscribeFieldsCreated(ctx, func(ctx context.Context, fieldID string) error {
		input := workflows.AdvisoryInput{
			FieldID:  fieldID,
			RetryMin: time.Duration(cfg.Advisor.RetryMinMinutes) * time.Minute,
			RetryMax: time.Duration(cfg.Advisor.RetryMaxMinutes) * time.Minute,
		}
		_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "advisory-" + fieldID,
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.AdvisoryWorkflow, input)
		if err != nil {
			slog.Error("start advisory workflow", "field_id", fieldID, "error", err)
			return err
		}
		slog.Info("advisory workflow started", "field_id", fieldID)
		return nil
	}); err != nil {
		log.Fatalf("subscribe fields created: %v", err)
	}

	slog.Info("advisor worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
