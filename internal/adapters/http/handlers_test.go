package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"net/http/httptest"

	"github.com/gofiber/fiber/v2"

	handler "github.com/adeelhaq/sinchai/internal/adapters/http"
	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
	"github.com/adeelhaq/sinchai/internal/pkg/geospatial"
)

// ---- Mock repositories ----

type mockFarmRepo struct {
	createFn  func(ctx context.Context, farm *domain.Farm) error
	getByIDFn func(ctx context.Context, id string) (*domain.Farm, error)
	listFn    func(ctx context.Context) ([]domain.Farm, error)
}

func (m *mockFarmRepo) Create(ctx context.Context, farm *domain.Farm) error {
	if m.createFn != nil {
		return m.createFn(ctx, farm)
	}
	return nil
}
func (m *mockFarmRepo) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockFarmRepo) List(ctx context.Context) ([]domain.Farm, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockFieldRepo struct {
	createFn     func(ctx context.Context, field *domain.Field) (*domain.Field, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Field, error)
	listFn       func(ctx context.Context) ([]domain.Field, error)
	listByFarmFn func(ctx context.Context, farmID string) ([]domain.Field, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Field, error)
	updateFn     func(ctx context.Context, id string, patch domain.FieldPatch) (bool, error)
}

func (m *mockFieldRepo) Create(ctx context.Context, field *domain.Field) (*domain.Field, error) {
	if m.createFn != nil {
		return m.createFn(ctx, field)
	}
	return field, nil
}
func (m *mockFieldRepo) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockFieldRepo) List(ctx context.Context) ([]domain.Field, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockFieldRepo) ListByFarm(ctx context.Context, farmID string) ([]domain.Field, error) {
	if m.listByFarmFn != nil {
		return m.listByFarmFn(ctx, farmID)
	}
	return nil, nil
}
func (m *mockFieldRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Field, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}
func (m *mockFieldRepo) UpdateAttrs(ctx context.Context, id string, patch domain.FieldPatch) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return false, nil
}

type mockScheduleRepo struct {
	createFn func(ctx context.Context, schedule *domain.Schedule) error
	listFn   func(ctx context.Context, fieldID string, limit int) ([]domain.Schedule, error)
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *domain.Schedule) error {
	if m.createFn != nil {
		return m.createFn(ctx, schedule)
	}
	return nil
}
func (m *mockScheduleRepo) ListByField(ctx context.Context, fieldID string, limit int) ([]domain.Schedule, error) {
	if m.listFn != nil {
		return m.listFn(ctx, fieldID, limit)
	}
	return nil, nil
}

type mockSatStatRepo struct {
	listFn func(ctx context.Context, fieldID string, since time.Time) ([]domain.SatelliteStat, error)
}

func (m *mockSatStatRepo) InsertBatch(ctx context.Context, stats []domain.SatelliteStat) error {
	return nil
}
func (m *mockSatStatRepo) Latest(ctx context.Context, fieldID string) (*domain.SatelliteStat, error) {
	return nil, nil
}
func (m *mockSatStatRepo) ListByField(ctx context.Context, fieldID string, since time.Time) ([]domain.SatelliteStat, error) {
	if m.listFn != nil {
		return m.listFn(ctx, fieldID, since)
	}
	return nil, nil
}

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
	return nil, nil
}

// ---- Test helpers ----

var testPolicy = geospatial.AreaPolicy{MinAcres: 1.0, MaxAcres: 5.0}

// acceptableBoundary is roughly 2.3 acres, inside the allowed range.
func acceptableBoundary() []domain.GeoPoint {
	return []domain.GeoPoint{
		{Lat: 33.7000, Lon: 72.9000},
		{Lat: 33.7000, Lon: 72.9010},
		{Lat: 33.7009, Lon: 72.9010},
		{Lat: 33.7009, Lon: 72.9000},
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	fields := &mockFieldRepo{}
	schedules := &mockScheduleRepo{}
	d := &handler.Dependencies{
		Farms:           usecases.NewFarmService(&mockFarmRepo{}),
		Fields:          usecases.NewFieldService(fields, nil, nil, testPolicy),
		Recommendations: usecases.NewRecommendationService(fields, schedules, &mockWeather{}, &mockSoil{}, nil, nil),
		Schedules:       usecases.NewScheduleService(fields, schedules),
		SatStats:        &mockSatStatRepo{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Farm handler tests ----

func TestListFarms_Pagination(t *testing.T) {
	farms := make([]domain.Farm, 5)
	for i := range farms {
		farms[i] = domain.Farm{ID: fmt.Sprintf("f%d", i), Name: fmt.Sprintf("Farm %d", i)}
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Farms = usecases.NewFarmService(&mockFarmRepo{
			listFn: func(ctx context.Context) ([]domain.Farm, error) { return farms, nil },
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/farms?offset=2&limit=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Farm `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 farms in page, got %d", len(result.Data))
	}
	if result.Data[0].ID != "f2" {
		t.Errorf("expected page to start at f2, got %s", result.Data[0].ID)
	}
}

func TestCreateFarm_MissingName(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/farms", strings.NewReader(`{"location":{"lat":33.7,"lon":72.9}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Field handler tests ----

func TestCreateField_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Fields = usecases.NewFieldService(&mockFieldRepo{
			createFn: func(ctx context.Context, field *domain.Field) (*domain.Field, error) {
				stored := *field
				stored.ID = "fld-1"
				stored.AreaHa = 0.94
				stored.Centroid = domain.GeoPoint{Lat: 33.70045, Lon: 72.9005}
				return &stored, nil
			},
		}, nil, nil, testPolicy)
	})
	app := setupApp(deps)

	body, _ := json.Marshal(map[string]any{
		"farm_id":  "farm-1",
		"name":     "east plot",
		"crop":     "rice",
		"boundary": acceptableBoundary(),
	})
	req := httptest.NewRequest("POST", "/v1/fields", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var field domain.Field
	json.NewDecoder(resp.Body).Decode(&field)
	if field.ID != "fld-1" {
		t.Errorf("expected stored id, got %q", field.ID)
	}
	if field.AreaHa != 0.94 {
		t.Errorf("expected database-computed area, got %v", field.AreaHa)
	}
	if field.Crop != domain.CropRice {
		t.Errorf("expected crop rice, got %q", field.Crop)
	}
}

func TestCreateField_TooFewPoints(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"farm_id":"farm-1","boundary":[{"lat":33.7,"lon":72.9},{"lat":33.71,"lon":72.9}]}`
	req := httptest.NewRequest("POST", "/v1/fields", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateField_AreaOutOfRange(t *testing.T) {
	app := setupApp(makeDeps())

	// A tiny triangle, far under the 1-acre minimum.
	body := `{"farm_id":"farm-1","boundary":[
		{"lat":33.70000,"lon":72.90000},
		{"lat":33.70001,"lon":72.90001},
		{"lat":33.70001,"lon":72.90000}]}`
	req := httptest.NewRequest("POST", "/v1/fields", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var result struct {
		Code      string  `json:"code"`
		AreaAcres float64 `json:"area_acres"`
		MinAcres  float64 `json:"min_acres"`
		MaxAcres  float64 `json:"max_acres"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Code != "area_out_of_range" {
		t.Errorf("expected area_out_of_range, got %s", result.Code)
	}
	if result.MinAcres != 1.0 || result.MaxAcres != 5.0 {
		t.Errorf("expected allowed range in response, got %v-%v", result.MinAcres, result.MaxAcres)
	}
	if result.AreaAcres <= 0 || result.AreaAcres >= 1.0 {
		t.Errorf("expected tiny computed acreage in response, got %v", result.AreaAcres)
	}
}

func TestCreateField_UnknownCrop(t *testing.T) {
	app := setupApp(makeDeps())

	body, _ := json.Marshal(map[string]any{
		"farm_id":  "farm-1",
		"crop":     "kryptonite",
		"boundary": acceptableBoundary(),
	})
	req := httptest.NewRequest("POST", "/v1/fields", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMeasureBoundary(t *testing.T) {
	app := setupApp(makeDeps())

	body, _ := json.Marshal(map[string]any{"boundary": acceptableBoundary()})
	req := httptest.NewRequest("POST", "/v1/fields/measure", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var area usecases.AdvisoryArea
	json.NewDecoder(resp.Body).Decode(&area)
	if area.Acres < 2.0 || area.Acres > 2.6 {
		t.Errorf("expected roughly 2.3 acres, got %v", area.Acres)
	}
	if area.SqMeters <= 0 {
		t.Errorf("expected positive square meters, got %v", area.SqMeters)
	}
}

func TestNearbyFields_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/fields/nearby", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestGetField_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/fields/missing", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPatchField(t *testing.T) {
	var gotPatch domain.FieldPatch
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Fields = usecases.NewFieldService(&mockFieldRepo{
			updateFn: func(ctx context.Context, id string, patch domain.FieldPatch) (bool, error) {
				gotPatch = patch
				return true, nil
			},
			getByIDFn: func(ctx context.Context, id string) (*domain.Field, error) {
				return &domain.Field{ID: id, Crop: domain.CropMaize}, nil
			},
		}, nil, nil, testPolicy)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("PATCH", "/v1/fields/fld-1", strings.NewReader(`{"crop":"maize"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotPatch.Crop == nil || *gotPatch.Crop != domain.CropMaize {
		t.Errorf("expected crop patch to reach repository, got %+v", gotPatch)
	}
}

// ---- Recommendation handler tests ----

func recommendableField() *mockFieldRepo {
	return &mockFieldRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Field, error) {
			return &domain.Field{
				ID:       id,
				Crop:     domain.CropRice,
				AreaHa:   0.94,
				Centroid: domain.GeoPoint{Lat: 33.7, Lon: 72.9},
			}, nil
		},
	}
}

func TestRecommendation_Ready(t *testing.T) {
	soil := 20.0
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Recommendations = usecases.NewRecommendationService(
			recommendableField(), &mockScheduleRepo{},
			&mockWeather{snapshotFn: func(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
				return &ports.WeatherSnapshot{TempC: 30, RainForecastMm: 1.0, ET0Mm: 2.7}, nil
			}},
			&mockSoil{moistureFn: func(ctx context.Context, lat, lon float64) (*float64, error) {
				return &soil, nil
			}},
			nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/fields/fld-1/recommendation", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rec domain.Recommendation
	json.NewDecoder(resp.Body).Decode(&rec)
	if rec.Status != domain.RecommendationReady {
		t.Errorf("expected ready, got %s", rec.Status)
	}
	// rice: 1.1 * 2.7 - 1.0 = 1.97 -> 2.0
	if rec.Mm != 2.0 {
		t.Errorf("expected 2.0 mm, got %v", rec.Mm)
	}
}

func TestRecommendation_ProcessingReturns202(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Recommendations = usecases.NewRecommendationService(
			recommendableField(), &mockScheduleRepo{},
			&mockWeather{}, &mockSoil{}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/fields/fld-1/recommendation", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202 while soil moisture is pending, got %d", resp.StatusCode)
	}

	var rec domain.Recommendation
	json.NewDecoder(resp.Body).Decode(&rec)
	if rec.Status != domain.RecommendationProcessing {
		t.Errorf("expected processing, got %s", rec.Status)
	}
	if rec.ETAMinutes <= 0 {
		t.Errorf("expected a re-poll ETA, got %d", rec.ETAMinutes)
	}
}

func TestRecommendation_SoilOverrideOutOfBounds(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/fields/fld-1/recommendation?soil_moisture=140", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestConfirmRecommendation(t *testing.T) {
	var saved *domain.Schedule
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Recommendations = usecases.NewRecommendationService(
			recommendableField(),
			&mockScheduleRepo{createFn: func(ctx context.Context, schedule *domain.Schedule) error {
				saved = schedule
				return nil
			}},
			&mockWeather{}, &mockSoil{}, nil, nil)
	})
	app := setupApp(deps)

	body := `{"recommendation":{"field_id":"fld-1","status":"ready","recommendation_mm":4.5,"window_days":3}}`
	req := httptest.NewRequest("POST", "/v1/fields/fld-1/recommendation/confirm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if saved == nil || !saved.Confirmed {
		t.Fatalf("expected a confirmed schedule to be persisted, got %+v", saved)
	}
}

// ---- Schedule handler tests ----

func TestSeedSchedule(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		fields := &mockFieldRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Field, error) {
				return &domain.Field{ID: id, AreaHa: 2.0}, nil
			},
		}
		d.Schedules = usecases.NewScheduleService(fields, &mockScheduleRepo{})
	})
	app := setupApp(deps)

	body := `{"target_event_mm":40,"system_efficiency":0.8,"days":45}`
	req := httptest.NewRequest("POST", "/v1/fields/fld-1/schedule/seed", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Events []domain.ScheduleEvent `json:"events"`
		Count  int                    `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 7 {
		t.Errorf("expected 7 weekly events over 45 days, got %d", result.Count)
	}
	if len(result.Events) > 0 && result.Events[0].GrossMm != 50.0 {
		t.Errorf("expected gross 50 mm at 0.8 efficiency, got %v", result.Events[0].GrossMm)
	}
}

func TestListSchedules(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Schedules = usecases.NewScheduleService(&mockFieldRepo{}, &mockScheduleRepo{
			listFn: func(ctx context.Context, fieldID string, limit int) ([]domain.Schedule, error) {
				return []domain.Schedule{{ID: "s1", FieldID: fieldID}}, nil
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/fields/fld-1/schedules", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var schedules []domain.Schedule
	json.NewDecoder(resp.Body).Decode(&schedules)
	if len(schedules) != 1 {
		t.Errorf("expected 1 schedule, got %d", len(schedules))
	}
}

// ---- Satellite stats handler tests ----

func TestFieldSceneStats_BadSince(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/fields/fld-1/stats?since=yesterday", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestFieldSceneStats(t *testing.T) {
	ndvi := 0.61
	deps := makeDeps(func(d *handler.Dependencies) {
		d.SatStats = &mockSatStatRepo{
			listFn: func(ctx context.Context, fieldID string, since time.Time) ([]domain.SatelliteStat, error) {
				return []domain.SatelliteStat{{ID: "st1", FieldID: fieldID, NDVIMean: &ndvi}}, nil
			},
		}
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/fields/fld-1/stats?since=2026-06-01", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats []domain.SatelliteStat
	json.NewDecoder(resp.Body).Decode(&stats)
	if len(stats) != 1 || stats[0].NDVIMean == nil {
		t.Fatalf("expected one stat with ndvi, got %+v", stats)
	}
}
