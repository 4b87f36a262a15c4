package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
	"github.com/adeelhaq/sinchai/internal/pkg/metrics"
)

// PlatformStats holds row counts across the irrigation tables.
type PlatformStats struct {
	Farms      int    `json:"farms"`
	Fields     int    `json:"fields"`
	Schedules  int    `json:"schedules"`
	SceneStats int    `json:"scene_stats"`
	LastField  string `json:"last_field,omitempty"`
}

// PlatformStatsHandler returns row counts from the irrigation tables.
func PlatformStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats PlatformStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM farms),
				(SELECT count(*) FROM fields),
				(SELECT count(*) FROM schedules),
				(SELECT count(*) FROM s2_stats),
				COALESCE((SELECT max(created_at)::text FROM fields), '')
		`)
		if err := row.Scan(&stats.Farms, &stats.Fields, &stats.Schedules,
			&stats.SceneStats, &stats.LastField); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// CreateFarmHandler registers a new farm.
func CreateFarmHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var farm domain.Farm
		if err := c.BodyParser(&farm); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Farms.Create(c.Context(), &farm); err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.Status(201).JSON(farm)
	}
}

// ListFarmsHandler returns all farms.
func ListFarmsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farms, err := deps.Farms.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset, limit := pageParams(c, 100, 200)
		page, pg := pageSlice(farms, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetFarmHandler returns a single farm by ID.
func GetFarmHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "farm id is required")
		}
		farm, err := deps.Farms.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "farm not found")
		}
		return c.JSON(farm)
	}
}

// FarmFieldsHandler returns all fields belonging to a farm.
func FarmFieldsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "farm id is required")
		}

		fields, err := deps.Fields.List(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset, limit := pageParams(c, 100, 500)
		page, pg := pageSlice(fields, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// createFieldRequest is the POST /v1/fields payload. The boundary is a
// list of lat/lon vertices in draw order; it may arrive open or closed.
type createFieldRequest struct {
	FarmID     string            `json:"farm_id"`
	Name       string            `json:"name"`
	Crop       string            `json:"crop"`
	SowingDate *time.Time        `json:"sowing_date"`
	Soil       string            `json:"soil"`
	Boundary   []domain.GeoPoint `json:"boundary"`
}

// CreateFieldHandler stores a farmer-drawn field. The boundary is
// validated against the plot-size policy before anything is persisted;
// a parcel outside the allowed range comes back as 422 with the
// computed area so the client can explain the rejection.
func CreateFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFieldRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.FarmID == "" {
			return errBadRequest(c, "farm_id is required")
		}

		var crop domain.Crop
		if req.Crop != "" {
			parsed, ok := domain.ParseCrop(req.Crop)
			if !ok {
				return errBadRequest(c, "unknown crop: "+req.Crop)
			}
			crop = parsed
		}

		field := &domain.Field{
			FarmID:     req.FarmID,
			Name:       req.Name,
			Crop:       crop,
			SowingDate: req.SowingDate,
			Soil:       req.Soil,
			Boundary:   domain.Ring(req.Boundary),
		}

		created, err := deps.Fields.Create(c.Context(), field)
		if err != nil {
			if areaErr, ok := usecases.IsAreaOutOfRange(err); ok {
				metrics.FieldsRejected.WithLabelValues("area_out_of_range").Inc()
				return errAreaOutOfRange(c, areaErr)
			}
			if errors.Is(err, usecases.ErrInsufficientPoints) {
				metrics.FieldsRejected.WithLabelValues("insufficient_points").Inc()
				return errBadRequest(c, err.Error())
			}
			if errors.Is(err, usecases.ErrInvalidCoordinate) {
				metrics.FieldsRejected.WithLabelValues("invalid_coordinate").Inc()
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		metrics.FieldsCreated.Inc()
		return c.Status(201).JSON(created)
	}
}

// measureRequest carries a boundary to measure without persisting it.
type measureRequest struct {
	Boundary []domain.GeoPoint `json:"boundary"`
}

// MeasureBoundaryHandler returns the advisory area of a drawn boundary
// so the client can show live feedback while the farmer is still drawing.
func MeasureBoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req measureRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		area := deps.Fields.MeasureBoundary(domain.Ring(req.Boundary))
		return c.JSON(area)
	}
}

// ListFieldsHandler lists fields, optionally filtered by farm.
func ListFieldsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID := c.Query("farm_id")

		fields, err := deps.Fields.List(c.Context(), farmID)
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset, limit := pageParams(c, 100, 500)
		page, pg := pageSlice(fields, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// NearbyFieldsHandler returns fields within a radius of a point.
func NearbyFieldsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 20)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		fields, err := deps.Fields.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fields)
	}
}

// GetFieldHandler returns a single field by ID.
func GetFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}
		field, err := deps.Fields.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "field not found")
		}
		return c.JSON(field)
	}
}

// PatchFieldHandler updates a field's mutable attributes. The boundary
// is immutable; redraws create a new field.
func PatchFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		var patch domain.FieldPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		updated, err := deps.Fields.UpdateAttrs(c.Context(), id, patch)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if !updated {
			return errNotFound(c, "field not found")
		}

		field, err := deps.Fields.GetByID(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(field)
	}
}

// FieldRecommendationHandler computes an irrigation recommendation for a
// field. Returns 202 with an ETA while satellite soil moisture is still
// being resolved; clients are expected to re-poll.
func FieldRecommendationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		var soilOverride *float64
		if c.Query("soil_moisture") != "" {
			v := c.QueryFloat("soil_moisture", -1)
			if v < 0 || v > 100 {
				return errBadRequest(c, "soil_moisture must be between 0 and 100")
			}
			soilOverride = &v
		}

		rec, err := deps.Recommendations.Compute(c.Context(), id, soilOverride)
		if err != nil {
			return errNotFound(c, "field not found")
		}

		metrics.RecommendationsComputed.WithLabelValues(string(rec.Status)).Inc()
		if rec.Status == domain.RecommendationProcessing {
			return c.Status(202).JSON(rec)
		}
		return c.JSON(rec)
	}
}

// confirmRequest is the POST .../recommendation/confirm payload.
type confirmRequest struct {
	Recommendation *domain.Recommendation `json:"recommendation"`
	Events         []domain.ScheduleEvent `json:"events"`
	Notes          string                 `json:"notes"`
}

// ConfirmRecommendationHandler persists a recommendation the farmer
// accepted as a confirmed schedule and announces it on the broker.
func ConfirmRecommendationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		var req confirmRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Recommendation == nil {
			return errBadRequest(c, "recommendation is required")
		}

		schedule, err := deps.Recommendations.Confirm(c.Context(), id, req.Recommendation, req.Events, req.Notes)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.Status(201).JSON(schedule)
	}
}

// SeedScheduleHandler generates a draft watering calendar for a field
// from simple depth/efficiency parameters, without persisting anything.
func SeedScheduleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		var params usecases.SeedParams
		if err := c.BodyParser(&params); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		events, err := deps.Schedules.Seed(c.Context(), id, params)
		if err != nil {
			return errNotFound(c, "field not found")
		}

		return c.JSON(fiber.Map{
			"field_id": id,
			"events":   events,
			"count":    len(events),
		})
	}
}

// SaveScheduleHandler persists a farmer-edited schedule.
func SaveScheduleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		var schedule domain.Schedule
		if err := c.BodyParser(&schedule); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		schedule.FieldID = id

		if err := deps.Schedules.Save(c.Context(), &schedule); err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.Status(201).JSON(schedule)
	}
}

// ListSchedulesHandler returns the saved schedules for a field, newest first.
func ListSchedulesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		schedules, err := deps.Schedules.ListByField(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(schedules)
	}
}

// FieldSceneStatsHandler returns satellite scene summaries for a field.
// An optional since=YYYY-MM-DD query bounds the range; default 90 days.
func FieldSceneStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "field id is required")
		}

		since := time.Now().AddDate(0, 0, -90)
		if raw := c.Query("since"); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return errBadRequest(c, "since must be YYYY-MM-DD")
			}
			since = t
		}

		stats, err := deps.SatStats.ListByField(c.Context(), id, since)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(stats)
	}
}
