package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
)

// --- Mock weather / soil moisture ---

type mockWeather struct {
	snapshotFn func(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error)
}

func (m *mockWeather) Snapshot(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx, lat, lon)
	}
	return &ports.WeatherSnapshot{TempC: 30, RainForecastMm: 0, ET0Mm: 2.6}, nil
}

type mockSoil struct {
	moistureFn func(ctx context.Context, lat, lon float64) (*float64, error)
}

func (m *mockSoil) MoisturePct(ctx context.Context, lat, lon float64) (*float64, error) {
	if m.moistureFn != nil {
		return m.moistureFn(ctx, lat, lon)
	}
	return nil, errors.New("no reading")
}

func ricefield() *mockFieldRepo {
	return &mockFieldRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Field, error) {
			return &domain.Field{
				ID:       id,
				Crop:     domain.CropRice,
				AreaHa:   1.2,
				Centroid: domain.GeoPoint{Lat: 33.7, Lon: 72.9},
			}, nil
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

// --- Tests ---

func TestRecommendationService_Compute_Ready(t *testing.T) {
	weather := &mockWeather{
		snapshotFn: func(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
			return &ports.WeatherSnapshot{TempC: 32, RainForecastMm: 1.0, ET0Mm: 2.7}, nil
		},
	}
	soil := &mockSoil{
		moistureFn: func(ctx context.Context, lat, lon float64) (*float64, error) {
			return floatPtr(22), nil
		},
	}

	svc := usecases.NewRecommendationService(ricefield(), &mockScheduleRepo{}, weather, soil, nil, nil)
	rec, err := svc.Compute(context.Background(), "f-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != domain.RecommendationReady {
		t.Fatalf("expected ready, got %s", rec.Status)
	}

	// Rice Kc 1.1: 1.1*2.7 - 1.0 = 1.97, soil 22% applies no damping, 2.0 after rounding.
	if rec.Mm != 2.0 {
		t.Errorf("expected 2.0 mm, got %f", rec.Mm)
	}
	if rec.WindowDays != 3 {
		t.Errorf("expected 3-day window, got %d", rec.WindowDays)
	}
	if rec.Inputs.SoilMoisturePct == nil || *rec.Inputs.SoilMoisturePct != 22 {
		t.Errorf("inputs should echo soil moisture, got %+v", rec.Inputs.SoilMoisturePct)
	}
}

func TestRecommendationService_Compute_SoilDamping(t *testing.T) {
	weather := &mockWeather{
		snapshotFn: func(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
			return &ports.WeatherSnapshot{TempC: 30, RainForecastMm: 0, ET0Mm: 10}, nil
		},
	}

	cases := []struct {
		soil float64
		want float64
	}{
		{45, 6.6},  // 1.1*10 * 0.6
		{35, 8.8},  // 1.1*10 * 0.8
		{20, 11.0}, // no damping
	}
	for _, tc := range cases {
		svc := usecases.NewRecommendationService(ricefield(), &mockScheduleRepo{}, weather, &mockSoil{}, nil, nil)
		rec, err := svc.Compute(context.Background(), "f-1", floatPtr(tc.soil))
		if err != nil {
			t.Fatalf("soil %v: unexpected error: %v", tc.soil, err)
		}
		if rec.Mm != tc.want {
			t.Errorf("soil %v%%: expected %v mm, got %v", tc.soil, tc.want, rec.Mm)
		}
	}
}

func TestRecommendationService_Compute_RainCoversNeed(t *testing.T) {
	weather := &mockWeather{
		snapshotFn: func(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
			return &ports.WeatherSnapshot{TempC: 24, RainForecastMm: 25, ET0Mm: 3}, nil
		},
	}
	svc := usecases.NewRecommendationService(ricefield(), &mockScheduleRepo{}, weather, &mockSoil{}, nil, nil)

	rec, err := svc.Compute(context.Background(), "f-1", floatPtr(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Mm != 0 {
		t.Errorf("heavy rain should zero the target, got %f mm", rec.Mm)
	}
}

func TestRecommendationService_Compute_Processing(t *testing.T) {
	// Satellite estimate unavailable and no override: processing + ETA.
	svc := usecases.NewRecommendationService(ricefield(), &mockScheduleRepo{}, &mockWeather{}, &mockSoil{}, nil, nil)

	rec, err := svc.Compute(context.Background(), "f-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != domain.RecommendationProcessing {
		t.Fatalf("expected processing, got %s", rec.Status)
	}
	if rec.ETAMinutes <= 0 {
		t.Errorf("processing recommendation needs an ETA, got %d", rec.ETAMinutes)
	}
	if rec.Mm != 0 {
		t.Errorf("processing recommendation must not carry a depth, got %f", rec.Mm)
	}
}

func TestRecommendationService_Compute_FieldMissing(t *testing.T) {
	repo := &mockFieldRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Field, error) {
			return nil, errors.New("no rows in result set")
		},
	}
	svc := usecases.NewRecommendationService(repo, &mockScheduleRepo{}, &mockWeather{}, &mockSoil{}, nil, nil)

	if _, err := svc.Compute(context.Background(), "missing", nil); err == nil {
		t.Error("expected error for missing field")
	}
}

func TestRecommendationService_Confirm(t *testing.T) {
	var saved *domain.Schedule
	schedules := &mockScheduleRepo{
		createFn: func(ctx context.Context, sch *domain.Schedule) error {
			saved = sch
			return nil
		},
	}
	svc := usecases.NewRecommendationService(ricefield(), schedules, &mockWeather{}, &mockSoil{}, nil, nil)

	rec := &domain.Recommendation{
		FieldID:    "f-1",
		Status:     domain.RecommendationReady,
		Mm:         4.2,
		WindowDays: 3,
	}
	sch, err := svc.Confirm(context.Background(), "f-1", rec, nil, "farmer accepted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sch.Confirmed {
		t.Error("confirmed schedule should be marked confirmed")
	}
	if saved == nil || saved.RecommendationMm != 4.2 {
		t.Errorf("repo should receive the confirmed depth, got %+v", saved)
	}
}

func TestRecommendationService_Confirm_RejectsNonPositive(t *testing.T) {
	svc := usecases.NewRecommendationService(ricefield(), &mockScheduleRepo{}, &mockWeather{}, &mockSoil{}, nil, nil)

	if _, err := svc.Confirm(context.Background(), "f-1", &domain.Recommendation{Mm: 0}, nil, ""); err == nil {
		t.Error("expected error for zero recommendation_mm")
	}
}
