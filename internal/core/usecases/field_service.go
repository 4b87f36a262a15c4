package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/pkg/geospatial"
)

// FieldService handles field creation, the area-policy gate, and reads.
type FieldService struct {
	fields ports.FieldRepository
	cache  ports.CacheService
	events ports.EventPublisher
	policy geospatial.AreaPolicy
}

// NewFieldService creates a new FieldService.
func NewFieldService(fields ports.FieldRepository, cache ports.CacheService, events ports.EventPublisher, policy geospatial.AreaPolicy) *FieldService {
	return &FieldService{fields: fields, cache: cache, events: events, policy: policy}
}

// AdvisoryArea is the client-facing pre-check computed from the drawn
// boundary before submission. The persisted area_ha is recomputed by the
// database and may diverge slightly; that divergence is expected.
type AdvisoryArea struct {
	SqMeters float64 `json:"sq_meters"`
	Hectares float64 `json:"hectares"`
	Acres    float64 `json:"acres"`
}

// MeasureBoundary computes the advisory area for a boundary ring without
// persisting anything. Rings with fewer than three points yield zeroes.
func (s *FieldService) MeasureBoundary(ring domain.Ring) AdvisoryArea {
	m2 := geospatial.AreaSqMeters(ring)
	return AdvisoryArea{
		SqMeters: m2,
		Hectares: geospatial.SqMetersToHectares(m2),
		Acres:    geospatial.SqMetersToAcres(m2),
	}
}

// Create validates the boundary against the area policy and stores the
// field. The boundary ring may arrive open; it is normalized to a closed
// polygon at the storage layer without mutating the input.
func (s *FieldService) Create(ctx context.Context, field *domain.Field) (*domain.Field, error) {
	if len(field.Boundary) < 3 {
		return nil, ErrInsufficientPoints
	}
	for _, p := range field.Boundary {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return nil, fmt.Errorf("%w: lat=%f lon=%f", ErrInvalidCoordinate, p.Lat, p.Lon)
		}
	}

	area := s.MeasureBoundary(field.Boundary)
	if !s.policy.InRange(area.Acres) {
		return nil, &AreaOutOfRangeError{
			Acres:    area.Acres,
			MinAcres: s.policy.MinAcres,
			MaxAcres: s.policy.MaxAcres,
		}
	}

	created, err := s.fields.Create(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "fields:list")
	}
	if s.events != nil {
		_ = s.events.PublishFieldCreated(ctx, created)
	}

	return created, nil
}

// GetByID returns a single field.
func (s *FieldService) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	cacheKey := "fields:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var f domain.Field
			if err := json.Unmarshal(data, &f); err == nil {
				return &f, nil
			}
		}
	}

	field, err := s.fields.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(field); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return field, nil
}

// List returns all fields, optionally scoped to a farm.
func (s *FieldService) List(ctx context.Context, farmID string) ([]domain.Field, error) {
	if farmID != "" {
		return s.fields.ListByFarm(ctx, farmID)
	}

	cacheKey := "fields:list"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var fields []domain.Field
			if err := json.Unmarshal(data, &fields); err == nil {
				return fields, nil
			}
		}
	}

	fields, err := s.fields.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(fields); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return fields, nil
}

// FindNearby returns fields whose boundary lies within radiusMeters of a point.
func (s *FieldService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Field, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.fields.FindNearby(ctx, lat, lon, radiusMeters, limit)
}

// UpdateAttrs patches mutable field attributes. The boundary is immutable
// after creation; re-drawing means creating a new field.
func (s *FieldService) UpdateAttrs(ctx context.Context, id string, patch domain.FieldPatch) (bool, error) {
	updated, err := s.fields.UpdateAttrs(ctx, id, patch)
	if err != nil {
		return false, fmt.Errorf("update field %s: %w", id, err)
	}
	if updated && s.cache != nil {
		_ = s.cache.Delete(ctx, "fields:id:"+id)
		_ = s.cache.Delete(ctx, "fields:list")
	}
	return updated, nil
}
