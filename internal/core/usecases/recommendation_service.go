package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
)

// defaultWindowDays is the validity window of a recommendation.
const defaultWindowDays = 3

// processingETAMinutes is the suggested re-poll delay returned while
// satellite soil moisture is still being fetched.
const processingETAMinutes = 2

// RecommendationService computes irrigation water-depth advice from
// weather, crop coefficient, and soil moisture.
type RecommendationService struct {
	fields    ports.FieldRepository
	schedules ports.ScheduleRepository
	weather   ports.WeatherService
	soil      ports.SoilMoistureService
	cache     ports.CacheService
	events    ports.EventPublisher
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(
	fields ports.FieldRepository,
	schedules ports.ScheduleRepository,
	weather ports.WeatherService,
	soil ports.SoilMoistureService,
	cache ports.CacheService,
	events ports.EventPublisher,
) *RecommendationService {
	return &RecommendationService{
		fields:    fields,
		schedules: schedules,
		weather:   weather,
		soil:      soil,
		cache:     cache,
		events:    events,
	}
}

// Compute derives a recommendation for a field. When soilOverride is nil
// the satellite estimate is used; if that is not available yet the
// returned recommendation has status "processing" and an ETA so the
// caller can re-poll.
func (s *RecommendationService) Compute(ctx context.Context, fieldID string, soilOverride *float64) (*domain.Recommendation, error) {
	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fieldID, err)
	}

	wx, err := s.weatherSnapshot(ctx, field.Centroid.Lat, field.Centroid.Lon)
	if err != nil {
		return nil, fmt.Errorf("weather snapshot: %w", err)
	}

	sm := soilOverride
	if sm == nil && s.soil != nil {
		// Best effort: an error here just means the reading isn't ready.
		if pct, err := s.soil.MoisturePct(ctx, field.Centroid.Lat, field.Centroid.Lon); err == nil {
			sm = pct
		}
	}

	inputs := domain.RecommendationInputs{
		Crop:            field.Crop,
		SoilMoisturePct: sm,
		TempC:           wx.TempC,
		RainForecastMm:  wx.RainForecastMm,
		ET0Mm:           wx.ET0Mm,
	}

	if sm == nil {
		return &domain.Recommendation{
			FieldID:    fieldID,
			Status:     domain.RecommendationProcessing,
			Inputs:     inputs,
			ETAMinutes: processingETAMinutes,
			ComputedAt: time.Now().UTC(),
		}, nil
	}

	return &domain.Recommendation{
		FieldID:    fieldID,
		Status:     domain.RecommendationReady,
		Mm:         irrigationMm(field.Crop, wx.ET0Mm, wx.RainForecastMm, sm),
		WindowDays: defaultWindowDays,
		Inputs:     inputs,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// Confirm persists an accepted recommendation as a confirmed schedule and
// announces it.
func (s *RecommendationService) Confirm(ctx context.Context, fieldID string, rec *domain.Recommendation, events []domain.ScheduleEvent, notes string) (*domain.Schedule, error) {
	if rec == nil || rec.Mm <= 0 {
		return nil, fmt.Errorf("recommendation_mm must be positive")
	}

	schedule := &domain.Schedule{
		FieldID:          fieldID,
		Events:           events,
		RecommendationMm: rec.Mm,
		WindowDays:       rec.WindowDays,
		Inputs:           rec.Inputs,
		Notes:            notes,
		Confirmed:        true,
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("save schedule: %w", err)
	}

	if s.events != nil {
		_ = s.events.PublishScheduleConfirmed(ctx, schedule)
	}

	return schedule, nil
}

// weatherSnapshot fetches a forecast with a short read-through cache so
// adjacent fields sharing a centroid cell don't hammer the upstream API.
func (s *RecommendationService) weatherSnapshot(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
	cacheKey := fmt.Sprintf("wx:%.3f:%.3f", lat, lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var wx ports.WeatherSnapshot
			if err := json.Unmarshal(data, &wx); err == nil {
				return &wx, nil
			}
		}
	}

	wx, err := s.weather.Snapshot(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(wx); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return wx, nil
}

// irrigationMm is the simplified water-need model: target = Kc·ET0 − rain,
// floored at zero, then damped when the soil is already wet.
func irrigationMm(crop domain.Crop, et0Mm, rainMm float64, soilPct *float64) float64 {
	target := crop.Kc()*et0Mm - rainMm
	if target < 0 {
		target = 0
	}

	if soilPct != nil {
		switch {
		case *soilPct >= 40:
			target *= 0.6
		case *soilPct >= 30:
			target *= 0.8
		}
	}

	return math.Round(target*10) / 10
}
