package ports

import (
	"context"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// WeatherSnapshot summarises the next 24 hours at a point: mean forecast
// temperature, accumulated rainfall, and a reference evapotranspiration
// estimate in mm/day.
type WeatherSnapshot struct {
	TempC          float64 `json:"temp_c"`
	RainForecastMm float64 `json:"rainfall_forecast_mm"`
	ET0Mm          float64 `json:"et0_mm"`
}

// WeatherService fetches a forecast snapshot for a coordinate.
type WeatherService interface {
	Snapshot(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error)
}

// SoilMoistureService returns an estimated volumetric soil moisture
// percentage at a coordinate, or nil when no usable reading is available
// yet (the caller is expected to retry later).
type SoilMoistureService interface {
	MoisturePct(ctx context.Context, lat, lon float64) (*float64, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFieldCreated(ctx context.Context, field *domain.Field) error
	PublishRecommendationReady(ctx context.Context, rec *domain.Recommendation) error
	PublishScheduleConfirmed(ctx context.Context, schedule *domain.Schedule) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeFieldsCreated(ctx context.Context, handler func(ctx context.Context, fieldID string) error) error
	SubscribeRecommendationsReady(ctx context.Context, handler func(ctx context.Context, rec *domain.Recommendation) error) error
	SubscribeSchedulesConfirmed(ctx context.Context, handler func(ctx context.Context, schedule *domain.Schedule) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
